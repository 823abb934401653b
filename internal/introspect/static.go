package introspect

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// StaticTable is the fixture form of one table.
type StaticTable struct {
	Columns     []StaticColumn `yaml:"columns"`
	Indexed     []string       `yaml:"indexed,omitempty"`
	ForeignKeys []ForeignKey   `yaml:"foreign_keys,omitempty"`
}

// StaticColumn carries the raw database type so it goes through NormalizeType
// exactly like an extracted column.
type StaticColumn struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	AllowNull  bool    `yaml:"allow_null,omitempty"`
	MaxLength  *int    `yaml:"max_length,omitempty"`
	Default    *string `yaml:"default,omitempty"`
	PrimaryKey bool    `yaml:"pk,omitempty"`
}

// StaticProvider is an in-memory Provider, used for offline generation and tests.
type StaticProvider struct {
	Tables map[string]StaticTable `yaml:"tables"`
}

// LoadStaticFile reads a YAML schema snapshot.
func LoadStaticFile(path string) (*StaticProvider, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStatic(b)
}

// ParseStatic decodes a YAML schema snapshot.
func ParseStatic(b []byte) (*StaticProvider, error) {
	var p StaticProvider
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse schema snapshot: %w", err)
	}
	for name, t := range p.Tables {
		for _, fk := range t.ForeignKeys {
			if err := fk.Validate(); err != nil {
				return nil, fmt.Errorf("table %s: %w", name, err)
			}
		}
	}
	return &p, nil
}

func (p *StaticProvider) table(name string) (StaticTable, error) {
	t, ok := p.Tables[name]
	if !ok || len(t.Columns) == 0 {
		return StaticTable{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

func (p *StaticProvider) TableColumns(_ context.Context, table string) ([]Column, error) {
	t, err := p.table(table)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = Column{
			Name:       c.Name,
			Type:       NormalizeType(c.Type),
			RawType:    c.Type,
			AllowNull:  c.AllowNull,
			MaxLength:  c.MaxLength,
			Default:    c.Default,
			PrimaryKey: c.PrimaryKey,
		}
	}
	return cols, nil
}

func (p *StaticProvider) IndexedColumns(_ context.Context, table string) ([]string, error) {
	t, err := p.table(table)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), t.Indexed...), nil
}

func (p *StaticProvider) ForeignKeys(_ context.Context, table string) ([]ForeignKey, error) {
	t, err := p.table(table)
	if err != nil {
		return nil, err
	}
	return append([]ForeignKey(nil), t.ForeignKeys...), nil
}

// TableNames lists the tables in the snapshot in name order.
func (p *StaticProvider) TableNames(context.Context) ([]string, error) {
	names := make([]string, 0, len(p.Tables))
	for name := range p.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
