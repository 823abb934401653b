// Package emit renders the artifacts of a scaffold from its naming surface,
// table metadata and report definition.
package emit

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"scaffoldgen/internal/inflection"
)

// entityExcluded are bookkeeping columns left out of entities and schemas.
var entityExcluded = []string{"created_at", "updated_at", "active"}

// Render formats f as Go source.
func Render(f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// fieldName turns a column name into an exported Go identifier with the
// usual ID initialism.
func fieldName(column string) string {
	name := inflection.Camelize(column)
	if name == "Id" {
		return "ID"
	}
	if strings.HasSuffix(name, "Id") {
		return strings.TrimSuffix(name, "Id") + "ID"
	}
	if name != "" && !unicode.IsLetter(rune(name[0])) {
		name = "X" + name
	}
	return name
}

// packageName turns an applet name into a Go package name.
func packageName(applet string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(applet) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || unicode.IsDigit(rune(b.String()[0])) {
		return "applet" + b.String()
	}
	return b.String()
}

// goType turns a mapped type name into jennifer code. ok is false for the
// unmapped placeholder, which is emitted as any.
func goType(t string) (code *jen.Statement, ok bool) {
	if strings.HasPrefix(t, "*") {
		inner, ok := goType(t[1:])
		return jen.Op("*").Add(inner), ok
	}
	if strings.HasPrefix(t, "[]") {
		inner, ok := goType(t[2:])
		return jen.Index().Add(inner), ok
	}
	switch t {
	case "int64":
		return jen.Int64(), true
	case "string":
		return jen.String(), true
	case "bool":
		return jen.Bool(), true
	case "float64":
		return jen.Float64(), true
	case "time.Time":
		return jen.Qual("time", "Time"), true
	case "map[string]any":
		return jen.Map(jen.String()).Any(), true
	}
	return jen.Any(), false
}
