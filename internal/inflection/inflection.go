// Package inflection derives identifiers from table and program names.
//
// All functions are pure. The rules are the go-openapi default English rules
// plus the additions registered in newRuleset; generated names depend on them,
// so changes here change every scaffold.
package inflection

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var rules = newRuleset()

func newRuleset() *inflect.Ruleset {
	rs := inflect.NewDefaultRuleset()
	for _, w := range []string{"equipment", "information", "series", "species", "staff", "data"} {
		rs.AddUncountable(w)
	}
	rs.AddIrregular("person", "people")
	rs.AddIrregular("criterion", "criteria")
	rs.AddIrregular("status", "statuses")
	return rs
}

// Singularize returns the singular form of word ("order_items" -> "order_item").
func Singularize(word string) string {
	return rules.Singularize(word)
}

// Pluralize returns the plural form of word.
func Pluralize(word string) string {
	return rules.Pluralize(word)
}

// Camelize turns snake_case into CamelCase ("order_item" -> "OrderItem").
func Camelize(word string) string {
	return rules.Camelize(word)
}

// Underscore turns CamelCase into snake_case ("OrderItem" -> "order_item").
func Underscore(word string) string {
	return rules.Underscore(word)
}

// ForeignKey returns the conventional key column referring to word ("customer" -> "customer_id").
func ForeignKey(word string) string {
	return rules.ForeignKey(word)
}

// Titleize capitalizes every underscore or space separated token and joins them
// with spaces ("order_items" -> "Order Items").
func Titleize(s string) string {
	return strings.Join(titleTokens(s), " ")
}

// TitleJoin is Titleize without separators ("fruit_stock" -> "FruitStock").
func TitleJoin(s string) string {
	return strings.Join(titleTokens(s), "")
}

func titleTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	// a Caser keeps state between calls and cannot be shared across goroutines
	titler := cases.Title(language.English)
	for i, f := range fields {
		fields[i] = titler.String(f)
	}
	return fields
}

// TrimKeySuffix drops the foreign key suffix from a column name ("customer_id" -> "customer").
func TrimKeySuffix(column, suffix string) string {
	return strings.TrimSuffix(column, suffix)
}
