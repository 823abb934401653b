// Package generator runs one scaffold generation: it validates the operator's
// parameters, introspects the table once per run and renders every artifact.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dave/jennifer/jen"

	"scaffoldgen/internal/dataminer"
	"scaffoldgen/internal/emit"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/internal/report"
	"scaffoldgen/internal/scaffold"
	"scaffoldgen/internal/tablemeta"
	"scaffoldgen/pkg/config"
)

// ErrFileExists is returned by Write when it would replace an existing file.
var ErrFileExists = errors.New("file exists")

// Deps are the collaborators of a run.
type Deps struct {
	Provider introspect.Provider

	// Introspector describes the report query's result columns. Nil derives
	// them from the query's own select list.
	Introspector dataminer.ColumnIntrospector

	Settings config.GeneratorConfig
}

// Sources is the outcome of a run. Files are keyed by their path relative to
// the application root.
type Sources struct {
	Config      *scaffold.Config    `json:"-"`
	ClassNames  scaffold.ClassNames `json:"classnames"`
	Paths       scaffold.FileNames  `json:"paths"`
	Query       string              `json:"query"`
	Report      *report.Report      `json:"-"`
	Diagnostics []string            `json:"diagnostics,omitempty"`
	Files       map[string]string   `json:"files"`
}

// Run generates the sources of one scaffold.
func Run(ctx context.Context, deps Deps, p scaffold.Params) (*Sources, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	settings := deps.Settings
	if settings.AppName == "" {
		settings.AppName = config.DefaultAppName
	}
	lookup := dataminer.DefaultPolymorphicLookup()
	if settings.PolymorphicLookup.Table != "" {
		lookup = dataminer.PolymorphicLookup(settings.PolymorphicLookup)
	}

	snap := tablemeta.NewSnapshot(deps.Provider, settings.ForeignKeySuffix)
	meta, err := snap.Table(ctx, p.Table)
	if err != nil {
		return nil, err
	}
	cfg := scaffold.New(p, meta, settings.AppName)

	rep, err := dataminer.NewQueryMaker(snap, lookup).Make(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("query for %s: %w", p.Table, err)
	}
	dm, err := dataminer.NewDmQueryMaker(snap, deps.Introspector, lookup).Make(ctx, rep, cfg)
	if err != nil {
		return nil, fmt.Errorf("report for %s: %w", p.Table, err)
	}

	s := &Sources{
		Config:      cfg,
		ClassNames:  cfg.ClassNames(),
		Paths:       cfg.FileNames(),
		Report:      dm,
		Diagnostics: meta.Diagnostics(),
		Files:       map[string]string{},
	}
	if err := s.render(rep, dm); err != nil {
		return nil, err
	}
	logger.Info("generated %d files for %s", len(s.Files), p.Table)
	return s, nil
}

func (s *Sources) render(rep, dm *report.Report) error {
	cfg := s.Config
	s.Query = string(emit.Query(rep))
	s.Files[s.Paths.Query] = s.Query

	dmYAML, err := dm.ToYAML()
	if err != nil {
		return fmt.Errorf("report for %s: %w", cfg.Table, err)
	}
	s.Files[s.Paths.DmQuery] = string(dmYAML)

	for path, fn := range map[string]func(*scaffold.Config) ([]byte, error){
		s.Paths.List:   emit.List,
		s.Paths.Search: emit.Search,
		s.Paths.Menu:   emit.Menu,
	} {
		b, err := fn(cfg)
		if err != nil {
			return err
		}
		s.Files[path] = string(b)
	}

	for path, fn := range map[string]func(*scaffold.Config) (*jen.File, error){
		s.Paths.Entity:     emit.Entity,
		s.Paths.Validation: emit.Validation,
	} {
		f, err := fn(cfg)
		if err != nil {
			return err
		}
		if err := s.addGo(path, f); err != nil {
			return err
		}
	}

	if cfg.NewApplet {
		if err := s.addGo(s.Paths.Applet, emit.Applet(cfg)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sources) addGo(path string, f *jen.File) error {
	b, err := emit.Render(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s.Files[path] = string(b)
	return nil
}

// FileList returns the generated paths in lexical order.
func (s *Sources) FileList() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Write stores every file below dir. Unless overwrite is set nothing is
// written when any target already exists.
func (s *Sources) Write(dir string, overwrite bool) error {
	paths := s.FileList()
	if !overwrite {
		for _, p := range paths {
			target := filepath.Join(dir, filepath.FromSlash(p))
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("%w: %s", ErrFileExists, target)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	for _, p := range paths {
		target := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(s.Files[p]), 0o644); err != nil {
			return err
		}
		logger.Debug("wrote %s", target)
	}
	return nil
}
