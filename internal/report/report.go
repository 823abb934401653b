// Package report holds the query and report definition model shared by the
// query makers and the emitters.
package report

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/tablemeta"
)

// ControlType is the kind of input a report parameter is edited with.
type ControlType string

const (
	ControlText      ControlType = "text"
	ControlList      ControlType = "list"
	ControlDateRange ControlType = "daterange"
)

// Selected is one entry of a synthesized SELECT list.
type Selected struct {
	Expr    string                 // SQL expression without its alias
	Name    string                 // result column name
	Source  string                 // table the value comes from
	Type    introspect.StorageType // storage type of the value
	RawType string                 // database type name, kept for unmapped types
}

// SQL renders the select list entry, aliased when the expression does not
// already produce Name.
func (s Selected) SQL() string {
	if s.Expr == s.Name || strings.HasSuffix(s.Expr, "."+s.Name) {
		return s.Expr
	}
	return s.Expr + " AS " + s.Name
}

// Column is a result column of a report.
type Column struct {
	Name           string                 `yaml:"name"`
	SequenceNo     int                    `yaml:"sequence_no"`
	Caption        string                 `yaml:"caption"`
	NamespacedName string                 `yaml:"namespaced_name"`
	DataType       introspect.StorageType `yaml:"data_type"`
	Width          int                    `yaml:"width,omitempty"`
	Format         string                 `yaml:"format,omitempty"`
	Hide           bool                   `yaml:"hide"`
	GroupBySeq     int                    `yaml:"group_by_seq,omitempty"`
	RawType        string                 `yaml:"-"`
}

// Parameter is a user editable filter on a report column.
type Parameter struct {
	Column          string                 `yaml:"column"`
	Caption         string                 `yaml:"caption"`
	DataType        introspect.StorageType `yaml:"data_type"`
	ControlType     ControlType            `yaml:"control_type"`
	DefaultValue    string                 `yaml:"default_value,omitempty"`
	OrderedList     bool                   `yaml:"ordered_list,omitempty"`
	UIPriority      int                    `yaml:"ui_priority"`
	ListDef         string                 `yaml:"list_def,omitempty"`
	NeedsCompletion bool                   `yaml:"needs_completion,omitempty"`
	RawType         string                 `yaml:"-"`
}

// Report is a caption plus SQL, optionally enriched with result columns and
// parameters.
type Report struct {
	Caption    string
	SQL        string
	Limit      int
	Offset     int
	Columns    []Column
	Parameters []Parameter

	// Selected is the structured select list the SQL was built from, when known.
	Selected []Selected
}

// New returns a report with a caption and no SQL.
func New(caption string) *Report {
	return &Report{Caption: caption}
}

// Clone returns a deep copy of r.
func (r *Report) Clone() *Report {
	c := *r
	c.Columns = append([]Column(nil), r.Columns...)
	c.Parameters = append([]Parameter(nil), r.Parameters...)
	c.Selected = append([]Selected(nil), r.Selected...)
	return &c
}

// Column returns the named result column.
func (r *Report) Column(name string) (*Column, bool) {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i], true
		}
	}
	return nil, false
}

// AddParameter appends p, replacing an earlier definition for the same column.
func (r *Report) AddParameter(p Parameter) {
	for i := range r.Parameters {
		if r.Parameters[i].Column == p.Column {
			r.Parameters[i] = p
			return
		}
	}
	r.Parameters = append(r.Parameters, p)
}

// Parameter returns the parameter defined for a namespaced column.
func (r *Report) Parameter(column string) (*Parameter, bool) {
	for i := range r.Parameters {
		if r.Parameters[i].Column == column {
			return &r.Parameters[i], true
		}
	}
	return nil, false
}

type persisted struct {
	Caption    string               `yaml:"caption"`
	SQL        string               `yaml:"sql"`
	Limit      int                  `yaml:"limit,omitempty"`
	Offset     int                  `yaml:"offset,omitempty"`
	Columns    *yaml.Node           `yaml:"columns"`
	Parameters []persistedParameter `yaml:"query_parameter_definitions"`
}

type persistedColumn struct {
	Name           string `yaml:"name"`
	SequenceNo     int    `yaml:"sequence_no"`
	Caption        string `yaml:"caption"`
	NamespacedName string `yaml:"namespaced_name"`
	DataType       string `yaml:"data_type"`
	Width          int    `yaml:"width,omitempty"`
	Format         string `yaml:"format,omitempty"`
	Hide           bool   `yaml:"hide"`
	GroupBySeq     int    `yaml:"group_by_seq,omitempty"`
}

type persistedParameter struct {
	Column          string      `yaml:"column"`
	Caption         string      `yaml:"caption"`
	DataType        string      `yaml:"data_type"`
	ControlType     ControlType `yaml:"control_type"`
	DefaultValue    string      `yaml:"default_value,omitempty"`
	OrderedList     bool        `yaml:"ordered_list,omitempty"`
	UIPriority      int         `yaml:"ui_priority"`
	ListDef         string      `yaml:"list_def,omitempty"`
	NeedsCompletion bool        `yaml:"needs_completion,omitempty"`
}

// typeName is the persisted data type: unmapped types show the placeholder.
func typeName(t introspect.StorageType, raw string) string {
	if t == introspect.TypeUnmapped && raw != "" {
		return tablemeta.Placeholder(raw)
	}
	return t.String()
}

// MarshalYAML writes the persisted report format: columns as a mapping keyed by
// column name in result order.
func (r *Report) MarshalYAML() (interface{}, error) {
	cols := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range r.Columns {
		var v yaml.Node
		pc := persistedColumn{
			Name:           c.Name,
			SequenceNo:     c.SequenceNo,
			Caption:        c.Caption,
			NamespacedName: c.NamespacedName,
			DataType:       typeName(c.DataType, c.RawType),
			Width:          c.Width,
			Format:         c.Format,
			Hide:           c.Hide,
			GroupBySeq:     c.GroupBySeq,
		}
		if err := v.Encode(pc); err != nil {
			return nil, fmt.Errorf("encode column %s: %w", c.Name, err)
		}
		cols.Content = append(cols.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name}, &v)
	}
	params := make([]persistedParameter, len(r.Parameters))
	for i, p := range r.Parameters {
		params[i] = persistedParameter{
			Column:          p.Column,
			Caption:         p.Caption,
			DataType:        typeName(p.DataType, p.RawType),
			ControlType:     p.ControlType,
			DefaultValue:    p.DefaultValue,
			OrderedList:     p.OrderedList,
			UIPriority:      p.UIPriority,
			ListDef:         p.ListDef,
			NeedsCompletion: p.NeedsCompletion,
		}
	}
	return persisted{
		Caption:    r.Caption,
		SQL:        r.SQL,
		Limit:      r.Limit,
		Offset:     r.Offset,
		Columns:    cols,
		Parameters: params,
	}, nil
}

// ToYAML serializes r in the persisted report format.
func (r *Report) ToYAML() ([]byte, error) {
	return yaml.Marshal(r)
}
