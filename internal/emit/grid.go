package emit

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"scaffoldgen/internal/scaffold"
)

// GridAction is a row action of a grid definition.
type GridAction struct {
	URL      string `yaml:"url"`
	Text     string `yaml:"text"`
	Icon     string `yaml:"icon"`
	Title    string `yaml:"title,omitempty"`
	IsDelete bool   `yaml:"is_delete,omitempty"`
	Popup    bool   `yaml:"popup"`
}

// PageControl is a control shown above a grid.
type PageControl struct {
	ControlType string `yaml:"control_type"`
	URL         string `yaml:"url"`
	Text        string `yaml:"text"`
	Style       string `yaml:"style"`
	Behaviour   string `yaml:"behaviour"`
}

// Grid is a list or search definition over the scaffold's dataminer query.
type Grid struct {
	DataminerDefinition string        `yaml:"dataminer_definition"`
	Actions             []GridAction  `yaml:"actions"`
	PageControls        []PageControl `yaml:"page_controls"`
}

// NewGrid builds the grid shared by list and search pages.
func NewGrid(cfg *scaffold.Config) Grid {
	base := cfg.URLBase()
	row := base + "/$:id$"
	return Grid{
		DataminerDefinition: cfg.Table,
		Actions: []GridAction{
			{URL: row, Text: "view", Icon: "view-show", Title: "View", Popup: true},
			{URL: row + "/edit", Text: "edit", Icon: "edit", Title: "Edit", Popup: true},
			{URL: row, Text: "delete", Icon: "delete", IsDelete: true, Popup: true},
		},
		PageControls: []PageControl{{
			ControlType: "link",
			URL:         base + "/new",
			Text:        "New " + cfg.ClassNames().TextName,
			Style:       "button",
			Behaviour:   "popup",
		}},
	}
}

// List renders the list grid definition.
func List(cfg *scaffold.Config) ([]byte, error) {
	return marshalGrid(NewGrid(cfg))
}

// Search renders the search grid definition. It differs from the list only in
// where the host application looks it up.
func Search(cfg *scaffold.Config) ([]byte, error) {
	return marshalGrid(NewGrid(cfg))
}

func marshalGrid(g Grid) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return nil, fmt.Errorf("grid %s: %w", g.DataminerDefinition, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
