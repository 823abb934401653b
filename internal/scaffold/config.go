// Package scaffold derives every name a scaffold's artifacts are generated
// under from the operator's parameters and the table's metadata.
package scaffold

import (
	"path"
	"strings"

	"scaffoldgen/internal/inflection"
	"scaffoldgen/internal/tablemeta"
)

// Config is the naming surface of one scaffold. All derived names are pure
// functions of its fields.
type Config struct {
	AppName        string
	Table          string
	ShortName      string
	SingleName     string
	HasShortName   bool
	NewApplet      bool
	Applet         string
	ProgramText    string
	Program        string
	LabelField     string
	SharedRepoName string
	NestedRoute    string

	Meta *tablemeta.Meta
}

// ClassNames are the identifiers emitted code refers to.
type ClassNames struct {
	AppName              string `json:"app_name" yaml:"app_name"`
	Module               string `json:"module" yaml:"module"`
	Class                string `json:"class" yaml:"class"`
	Applet               string `json:"applet" yaml:"applet"`
	Program              string `json:"program" yaml:"program"`
	TextName             string `json:"text_name" yaml:"text_name"`
	Schema               string `json:"schema" yaml:"schema"`
	Repo                 string `json:"repo" yaml:"repo"`
	NamespacedRepo       string `json:"namespaced_repo" yaml:"namespaced_repo"`
	Interactor           string `json:"interactor" yaml:"interactor"`
	NamespacedInteractor string `json:"namespaced_interactor" yaml:"namespaced_interactor"`
	ViewPrefix           string `json:"view_prefix" yaml:"view_prefix"`
}

// ViewPaths are the view files of one scaffold.
type ViewPaths struct {
	New  string `json:"new" yaml:"new"`
	Edit string `json:"edit" yaml:"edit"`
	Show string `json:"show" yaml:"show"`
}

// TestPaths are the test files of one scaffold.
type TestPaths struct {
	Interactor string `json:"interactor" yaml:"interactor"`
	Repo       string `json:"repo" yaml:"repo"`
	Route      string `json:"route" yaml:"route"`
}

// FileNames are the output paths of every artifact, relative to the
// application root.
type FileNames struct {
	Applet     string    `json:"applet" yaml:"applet"`
	DmQuery    string    `json:"dm_query" yaml:"dm_query"`
	List       string    `json:"list" yaml:"list"`
	Search     string    `json:"search" yaml:"search"`
	Repo       string    `json:"repo" yaml:"repo"`
	Interactor string    `json:"inter" yaml:"inter"`
	Entity     string    `json:"entity" yaml:"entity"`
	Validation string    `json:"validation" yaml:"validation"`
	Route      string    `json:"route" yaml:"route"`
	UIRule     string    `json:"uirule" yaml:"uirule"`
	Menu       string    `json:"menu" yaml:"menu"`
	Query      string    `json:"query" yaml:"query"`
	View       ViewPaths `json:"view" yaml:"view"`
	Test       TestPaths `json:"test" yaml:"test"`
}

// New derives a Config. p must have passed Validate.
func New(p Params, meta *tablemeta.Meta, appName string) *Config {
	c := &Config{
		AppName:        appName,
		Table:          p.Table,
		ShortName:      p.ShortName,
		SingleName:     inflection.Singularize(p.ShortName),
		HasShortName:   p.ShortName != p.Table,
		Applet:         p.Applet,
		NewApplet:      p.Applet == OtherApplet,
		ProgramText:    strings.TrimSpace(p.Program),
		LabelField:     p.LabelField,
		SharedRepoName: p.SharedRepoName,
		NestedRoute:    p.NestedRouteParent,
		Meta:           meta,
	}
	if c.NewApplet {
		c.Applet = p.Other
	}
	c.Program = strings.ReplaceAll(c.ProgramText, " ", "_")
	if c.LabelField == "" && meta != nil {
		c.LabelField = meta.LikelyLabelField()
	}
	return c
}

// repoBase is the shared repository name without its Repo suffix, or the
// entity class when nothing is shared.
func (c *Config) repoBase() string {
	if c.SharedRepoName == "" {
		return inflection.Camelize(c.SingleName)
	}
	return inflection.Camelize(strings.TrimSuffix(c.SharedRepoName, "Repo"))
}

// ClassNames derives the identifiers of every generated artifact.
func (c *Config) ClassNames() ClassNames {
	module := inflection.TitleJoin(c.Applet) + "App"
	class := inflection.Camelize(c.SingleName)
	applet := inflection.Camelize(c.Applet)
	program := inflection.Camelize(c.Program)
	repo := c.repoBase() + "Repo"
	return ClassNames{
		AppName:              c.AppName,
		Module:               module,
		Class:                class,
		Applet:               applet,
		Program:              program,
		TextName:             inflection.Titleize(inflection.Singularize(c.Table)),
		Schema:               class + "Schema",
		Repo:                 repo,
		NamespacedRepo:       module + "::" + repo,
		Interactor:           class + "Interactor",
		NamespacedInteractor: module + "::" + class + "Interactor",
		ViewPrefix:           applet + "::" + program + "::" + class,
	}
}

// FileNames derives the output path of every artifact.
func (c *Config) FileNames() FileNames {
	repofile := c.SingleName
	if c.SharedRepoName != "" {
		repofile = inflection.Underscore(strings.TrimSuffix(c.SharedRepoName, "Repo"))
	}
	lib := path.Join("lib", c.Applet)
	return FileNames{
		Applet:     path.Join(lib, "applet.go"),
		DmQuery:    path.Join("grid_definitions", "dataminer_queries", c.Table+".yml"),
		List:       path.Join("grid_definitions", "lists", c.Table+".yml"),
		Search:     path.Join("grid_definitions", "searches", c.Table+".yml"),
		Repo:       path.Join(lib, "repositories", repofile+"_repo.go"),
		Interactor: path.Join(lib, "interactors", c.SingleName+"_interactor.go"),
		Entity:     path.Join(lib, "entities", c.SingleName+".go"),
		Validation: path.Join(lib, "validations", c.SingleName+"_schema.go"),
		Route:      path.Join("routes", c.Applet, c.Program+".go"),
		UIRule:     path.Join(lib, "ui_rules", c.SingleName+"_rule.go"),
		Menu:       path.Join("db", "menu", c.Applet+"_"+c.Table+".sql"),
		Query:      path.Join("db", "queries", c.Table+".sql"),
		View: ViewPaths{
			New:  path.Join(lib, "views", c.SingleName, "new.go"),
			Edit: path.Join(lib, "views", c.SingleName, "edit.go"),
			Show: path.Join(lib, "views", c.SingleName, "show.go"),
		},
		// tests sit next to the code they cover
		Test: TestPaths{
			Interactor: path.Join(lib, "interactors", c.SingleName+"_interactor_test.go"),
			Repo:       path.Join(lib, "repositories", repofile+"_repo_test.go"),
			Route:      path.Join("routes", c.Applet, c.Program+"_test.go"),
		},
	}
}

// ParentIDName is the key column that refers to the nested route parent, or
// "" for a top level resource.
func (c *Config) ParentIDName() string {
	if c.NestedRoute == "" {
		return ""
	}
	return inflection.ForeignKey(inflection.Singularize(c.NestedRoute))
}

// URLBase is the route prefix of the scaffold's pages.
func (c *Config) URLBase() string {
	return "/" + path.Join(c.Applet, c.Program, c.Table)
}
