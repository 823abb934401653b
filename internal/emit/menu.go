package emit

import (
	"bytes"
	"fmt"
	"text/template"

	"scaffoldgen/internal/inflection"
	"scaffoldgen/internal/report"
	"scaffoldgen/internal/scaffold"
)

// queryWidth is the line width of the display query.
const queryWidth = 120

var menuTemplate = template.Must(template.New("menu").Parse(`INSERT INTO functional_areas (functional_area_name) VALUES ('{{.Area}}');

INSERT INTO programs (program_name, program_sequence, functional_area_id)
VALUES ('{{.Program}}', 1, (SELECT id FROM functional_areas
                           WHERE functional_area_name = '{{.Area}}'));

INSERT INTO programs_webapps (program_id, webapp) VALUES (
      (SELECT id FROM programs
       WHERE program_name = '{{.Program}}'
         AND functional_area_id = (SELECT id FROM functional_areas
                                   WHERE functional_area_name = '{{.Area}}')),
       '{{.AppName}}');

-- NEW menu item
/*
INSERT INTO program_functions (program_id, program_function_name, url, program_function_sequence)
VALUES ((SELECT id FROM programs WHERE program_name = '{{.Program}}'
         AND functional_area_id = (SELECT id FROM functional_areas
                                   WHERE functional_area_name = '{{.Area}}')),
         'New {{.Class}}', '{{.URLBase}}/new', 1);
*/

-- LIST menu item
INSERT INTO program_functions (program_id, program_function_name, url, program_function_sequence)
VALUES ((SELECT id FROM programs WHERE program_name = '{{.Program}}'
         AND functional_area_id = (SELECT id FROM functional_areas
                                   WHERE functional_area_name = '{{.Area}}')),
         '{{.TableText}}', '/list/{{.Table}}', 2);

-- SEARCH menu item
/*
INSERT INTO program_functions (program_id, program_function_name, url, program_function_sequence)
VALUES ((SELECT id FROM programs WHERE program_name = '{{.Program}}'
         AND functional_area_id = (SELECT id FROM functional_areas
                                   WHERE functional_area_name = '{{.Area}}')),
         'Search {{.TableText}}', '/search/{{.Table}}', 2);
*/
`))

type menuData struct {
	Area      string
	Program   string
	AppName   string
	Class     string
	URLBase   string
	Table     string
	TableText string
}

// Menu renders the SQL that registers the scaffold's pages in the host
// application's menu.
func Menu(cfg *scaffold.Config) ([]byte, error) {
	data := menuData{
		Area:      inflection.Titleize(cfg.Applet),
		Program:   inflection.Titleize(cfg.ProgramText),
		AppName:   cfg.AppName,
		Class:     cfg.ClassNames().Class,
		URLBase:   cfg.URLBase(),
		Table:     cfg.Table,
		TableText: inflection.Titleize(cfg.Table),
	}
	var buf bytes.Buffer
	if err := menuTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("menu for %s: %w", cfg.Table, err)
	}
	return buf.Bytes(), nil
}

// Query renders the report's SQL laid out for reading.
func Query(rep *report.Report) []byte {
	return []byte(report.WrapSQL(rep.SQL, queryWidth) + "\n")
}
