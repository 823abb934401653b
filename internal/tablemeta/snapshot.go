package tablemeta

import (
	"context"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
)

// Snapshot memoizes table metadata for a single generation run. Referenced
// tables are introspected once no matter how many foreign keys point at them.
// A Snapshot is not safe for concurrent use.
type Snapshot struct {
	provider  introspect.Provider
	keySuffix string
	tables    map[string]*Meta
}

// NewSnapshot returns an empty snapshot over p.
func NewSnapshot(p introspect.Provider, keySuffix string) *Snapshot {
	if keySuffix == "" {
		keySuffix = DefaultKeySuffix
	}
	return &Snapshot{provider: p, keySuffix: keySuffix, tables: map[string]*Meta{}}
}

// Provider returns the underlying schema provider.
func (s *Snapshot) Provider() introspect.Provider { return s.provider }

// Table returns the metadata of name, loading it on first use. Failures are
// not cached.
func (s *Snapshot) Table(ctx context.Context, name string) (*Meta, error) {
	if m, ok := s.tables[name]; ok {
		logger.Debug("table %s served from snapshot", name)
		return m, nil
	}
	m, err := Load(ctx, s.provider, name)
	if err != nil {
		return nil, err
	}
	m.WithKeySuffix(s.keySuffix)
	s.tables[name] = m
	return m, nil
}

// LabelFieldFor returns the likely label field of table.
func (s *Snapshot) LabelFieldFor(ctx context.Context, table string) (string, error) {
	m, err := s.Table(ctx, table)
	if err != nil {
		return "", err
	}
	return m.LikelyLabelField(), nil
}
