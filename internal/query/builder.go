package query

import "fmt"

// Builder is the entry point for building queries against one table
type Builder struct {
	table string
}

// From starts a query against table
func From(table string) Builder {
	return Builder{table: table}
}

func (b Builder) Table() string { return b.table }

func (b Builder) Select(p Projection) SelectQuery {
	return SelectQuery{table: b.table, projection: p}
}

// Update turns equality comparisons into assignments in call order.
// Comparisons with any other operator, and combinators, are ignored. An
// equality whose value could not be converted fails the statement.
func (b Builder) Update(conds ...Condition) UpdateQuery {
	q := UpdateQuery{table: b.table}
	for _, cond := range conds {
		cmp, ok := cond.(Comparison)
		if !ok || cmp.Operator != OpEqual || cmp.Ref != "" {
			continue
		}
		if cmp.err != nil {
			if q.err == nil {
				q.err = fmt.Errorf("assignment to %s: %w", cmp.Column, cmp.err)
			}
			continue
		}
		q.assignments = append(q.assignments, Assignment{Column: cmp.Column, Value: cmp.Value})
	}
	return q
}

// Set builds an update from explicit assignments
func (b Builder) Set(assignments ...Assignment) UpdateQuery {
	return UpdateQuery{table: b.table, assignments: append([]Assignment(nil), assignments...)}
}

func (b Builder) Delete() DeleteQuery {
	return DeleteQuery{table: b.table}
}

// Insert starts an insert for the given columns
func (b Builder) Insert(columns ...string) InsertQuery {
	return InsertQuery{table: b.table, columns: append([]string(nil), columns...)}
}

// Join starts a join of this table with right
func (b Builder) Join(right string, on Condition) JoinQuery {
	return JoinQuery{left: b.table, right: right, on: on, projection: All()}
}
