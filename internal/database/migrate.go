package database

import (
	"fmt"
	"slices"

	"github.com/koba/litestore/internal/table"
)

// Migrate runs the table's script for version, if it has one. END
// TRANSACTION is issued afterwards in case the script left one open.
func (s *SQLite) Migrate(def table.Definition, version int32) error {
	script, ok := def.MigrateStatement(version)
	if !ok || script == "" {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}
	defer s.endTransaction()

	s.logger.Debug("migrating", "table", def.Name(), "version", version, "sql", script)
	if _, err := db.Exec(script); err != nil {
		return fmt.Errorf("%w: %s v%d: %s", ErrMigration, def.Name(), version, err)
	}
	return nil
}

// MigrateTo applies, in ascending order, every version any table declares
// after the stored user_version up to target. user_version is stored after
// each version succeeds, so a failed run resumes at the failed version. The
// stored version ends at target. A target at or below it does nothing.
func MigrateTo(db Database, target int32, defs ...table.Definition) error {
	current, err := db.UserVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if target <= current {
		return nil
	}

	for _, version := range pendingVersions(current, target, defs) {
		for _, def := range defs {
			if err := db.Migrate(def, version); err != nil {
				return err
			}
		}
		if err := db.SetUserVersion(version); err != nil {
			return fmt.Errorf("failed to store schema version %d: %w", version, err)
		}
	}

	if err := db.SetUserVersion(target); err != nil {
		return fmt.Errorf("failed to store schema version %d: %w", target, err)
	}
	db.Logger().Info("migrated schema", "from", current, "to", target)
	return nil
}

// pendingVersions is the sorted union of declared versions in (current, target]
func pendingVersions(current, target int32, defs []table.Definition) []int32 {
	var versions []int32
	for _, def := range defs {
		for _, version := range def.Versions() {
			if version > current && version <= target {
				versions = append(versions, version)
			}
		}
	}
	slices.Sort(versions)
	return slices.Compact(versions)
}
