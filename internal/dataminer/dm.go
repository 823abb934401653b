package dataminer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"scaffoldgen/internal/inflection"
	"scaffoldgen/internal/logger"
	"scaffoldgen/internal/report"
	"scaffoldgen/internal/scaffold"
	"scaffoldgen/internal/tablemeta"
)

// hiddenColumns are never shown in a generated report.
var hiddenColumns = []string{"id", "created_at", "updated_at"}

// ColumnIntrospector describes the result columns of a query.
type ColumnIntrospector interface {
	Columns(ctx context.Context, sql string) ([]report.Column, error)
}

// SelectedColumns describes result columns from the select list a query was
// built from, without a database.
type SelectedColumns []report.Selected

func (s SelectedColumns) Columns(_ context.Context, _ string) ([]report.Column, error) {
	cols := make([]report.Column, len(s))
	for i, sel := range s {
		cols[i] = report.Column{
			Name:           sel.Name,
			SequenceNo:     i + 1,
			Caption:        inflection.Titleize(sel.Name),
			NamespacedName: sel.Expr,
			DataType:       sel.Type,
			RawType:        sel.RawType,
		}
	}
	return cols, nil
}

// DmQueryMaker enriches a report query with visibility flags and filter
// parameters.
type DmQueryMaker struct {
	snap         *tablemeta.Snapshot
	introspector ColumnIntrospector
	lookup       PolymorphicLookup
}

// NewDmQueryMaker returns a maker that describes queries with introspector.
// A nil introspector falls back to the report's own select list.
func NewDmQueryMaker(snap *tablemeta.Snapshot, introspector ColumnIntrospector, lookup PolymorphicLookup) *DmQueryMaker {
	return &DmQueryMaker{snap: snap, introspector: introspector, lookup: lookup}
}

// Make returns a new report definition for rep; rep itself is not modified.
func (d *DmQueryMaker) Make(ctx context.Context, rep *report.Report, cfg *scaffold.Config) (*report.Report, error) {
	meta := cfg.Meta
	if meta == nil {
		var err error
		if meta, err = d.snap.Table(ctx, cfg.Table); err != nil {
			return nil, err
		}
	}

	cols, err := d.describe(ctx, rep)
	if err != nil {
		return nil, err
	}

	out := report.New(rep.Caption)
	out.SQL = rep.SQL
	out.Limit = rep.Limit
	out.Offset = rep.Offset
	out.Selected = slices.Clone(rep.Selected)

	for _, col := range cols {
		isKey := meta.IsKeyColumn(col.Name)
		col.Hide = slices.Contains(hiddenColumns, col.Name) || isKey
		out.Columns = append(out.Columns, col)

		fromTable := col.NamespacedName == "" || strings.HasPrefix(col.NamespacedName, meta.Table+".")
		if !isKey && !(fromTable && meta.IsIndexed(col.Name)) && !col.DataType.Temporal() {
			continue
		}
		p, err := d.parameterFor(ctx, meta, col)
		if err != nil {
			return nil, err
		}
		out.AddParameter(p)
	}
	return out, nil
}

// describe lists the result columns of rep, filling in namespaced names the
// introspector could not know.
func (d *DmQueryMaker) describe(ctx context.Context, rep *report.Report) ([]report.Column, error) {
	offline := SelectedColumns(rep.Selected)
	if d.introspector == nil {
		return offline.Columns(ctx, rep.SQL)
	}
	cols, err := d.introspector.Columns(ctx, rep.SQL)
	if err != nil {
		return nil, err
	}
	known, _ := offline.Columns(ctx, rep.SQL)
	for i := range cols {
		if cols[i].NamespacedName != "" {
			continue
		}
		if len(known) == len(cols) && known[i].Name == cols[i].Name {
			cols[i].NamespacedName = known[i].NamespacedName
			continue
		}
		for _, k := range known {
			if k.Name == cols[i].Name {
				cols[i].NamespacedName = k.NamespacedName
				break
			}
		}
	}
	return cols, nil
}

func (d *DmQueryMaker) parameterFor(ctx context.Context, meta *tablemeta.Meta, col report.Column) (report.Parameter, error) {
	p := report.Parameter{
		Column:      col.NamespacedName,
		Caption:     col.Caption,
		DataType:    col.DataType,
		RawType:     col.RawType,
		ControlType: report.ControlText,
		UIPriority:  1,
	}
	if p.Column == "" {
		p.Column = meta.Table + "." + col.Name
	}

	if meta.IsKeyColumn(col.Name) {
		fk, ok := meta.ForeignKeyFor(col.Name)
		if !ok {
			return p, nil
		}
		p.ControlType = report.ControlList
		p.OrderedList = true
		key := fk.Keys[0]
		if fk.Table == d.lookup.Table {
			p.ListDef = fmt.Sprintf("SELECT %s(%s), %s FROM %s WHERE role_id = (SELECT id FROM %s WHERE name = '%s')",
				d.lookup.Function, key, key, d.lookup.Table, d.lookup.RoleTable, RolePlaceholder)
			p.NeedsCompletion = true
			logger.Warn("parameter %s needs a role name in place of %s", p.Column, RolePlaceholder)
			return p, nil
		}
		label, err := d.snap.LabelFieldFor(ctx, fk.Table)
		if err != nil {
			return p, err
		}
		p.ListDef = fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s", label, key, fk.Table, label)
		return p, nil
	}

	if col.DataType.Temporal() {
		p.ControlType = report.ControlDateRange
	}
	return p, nil
}
