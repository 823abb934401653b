// Package dataminer synthesizes the report query of a scaffold and turns it
// into a filterable report definition.
package dataminer

import (
	"context"
	"fmt"
	"strings"

	"scaffoldgen/internal/inflection"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/report"
	"scaffoldgen/internal/scaffold"
	"scaffoldgen/internal/tablemeta"
)

// RolePlaceholder stands in for the role name of a polymorphic lookup list.
// The operator has to replace it by hand.
const RolePlaceholder = "ROLE_NAME_GOES_HERE"

// PolymorphicLookup names the shared table whose rows are displayed through a
// function instead of a join.
type PolymorphicLookup struct {
	Table     string
	Function  string
	RoleTable string
}

// DefaultPolymorphicLookup is the party role lookup.
func DefaultPolymorphicLookup() PolymorphicLookup {
	return PolymorphicLookup{Table: "party_roles", Function: "fn_party_role_name", RoleTable: "roles"}
}

// QueryMaker builds the base SELECT of a scaffold: every column of the table
// plus the label column of each referenced table.
type QueryMaker struct {
	snap   *tablemeta.Snapshot
	lookup PolymorphicLookup
}

func NewQueryMaker(snap *tablemeta.Snapshot, lookup PolymorphicLookup) *QueryMaker {
	return &QueryMaker{snap: snap, lookup: lookup}
}

// Make assembles the query for cfg. Identical metadata always yields
// identical SQL.
func (q *QueryMaker) Make(ctx context.Context, cfg *scaffold.Config) (*report.Report, error) {
	meta, err := q.tableMeta(ctx, cfg)
	if err != nil {
		return nil, err
	}
	table := meta.Table

	var selected []report.Selected
	names := map[string]bool{}
	for _, c := range meta.Columns() {
		selected = append(selected, report.Selected{
			Expr:    table + "." + c.Name,
			Name:    c.Name,
			Source:  table,
			Type:    c.Type,
			RawType: c.RawType,
		})
		names[c.Name] = true
	}

	// the table itself occupies its own name in FROM
	used := map[string]int{table: 1}
	var joins []string
	for _, fk := range meta.ForeignKeys() {
		if fk.Table == q.lookup.Table {
			for _, col := range fk.Columns {
				name := inflection.TrimKeySuffix(col, meta.KeySuffix())
				if names[name] {
					name = q.lookup.Table + "_" + name
				}
				selected = append(selected, report.Selected{
					Expr:   fmt.Sprintf("%s(%s.%s)", q.lookup.Function, table, col),
					Name:   name,
					Source: q.lookup.Table,
					Type:   introspect.TypeString,
				})
				names[name] = true
			}
			continue
		}

		used[fk.Table]++
		alias := fk.Table
		if n := used[fk.Table]; n > 1 {
			alias = fmt.Sprintf("%s%d", fk.Table, n)
		}

		ref, err := q.snap.Table(ctx, fk.Table)
		if err != nil {
			return nil, err
		}
		label := ref.LikelyLabelField()
		name := label
		// prefixed with the join alias, not the table name, so repeated references stay distinct
		if names[name] {
			name = alias + "_" + label
		}
		labelCol, _ := ref.Column(label)
		selected = append(selected, report.Selected{
			Expr:    alias + "." + label,
			Name:    name,
			Source:  fk.Table,
			Type:    labelCol.Type,
			RawType: labelCol.RawType,
		})
		names[name] = true

		joins = append(joins, joinClause(meta, fk, alias))
	}

	exprs := make([]string, len(selected))
	for i, s := range selected {
		exprs[i] = s.SQL()
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(exprs, ", "))
	b.WriteString("\nFROM ")
	b.WriteString(table)
	for _, j := range joins {
		b.WriteString("\n")
		b.WriteString(j)
	}

	rep := report.New(inflection.Titleize(table))
	rep.SQL = b.String()
	rep.Selected = selected
	return rep, nil
}

func (q *QueryMaker) tableMeta(ctx context.Context, cfg *scaffold.Config) (*tablemeta.Meta, error) {
	if cfg.Meta != nil {
		return cfg.Meta, nil
	}
	return q.snap.Table(ctx, cfg.Table)
}

// joinClause joins the referenced table under alias. An optional first key
// column keeps rows without a reference.
func joinClause(meta *tablemeta.Meta, fk introspect.ForeignKey, alias string) string {
	kind := "JOIN"
	if c, ok := meta.Column(fk.Columns[0]); ok && c.AllowNull {
		kind = "LEFT JOIN"
	}
	target := fk.Table
	if alias != fk.Table {
		target += " " + alias
	}
	conds := make([]string, len(fk.Columns))
	for i, col := range fk.Columns {
		conds[i] = fmt.Sprintf("%s.%s = %s.%s", alias, fk.Keys[i], meta.Table, col)
	}
	return fmt.Sprintf("%s %s ON %s", kind, target, strings.Join(conds, " AND "))
}
