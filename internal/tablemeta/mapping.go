package tablemeta

import (
	"fmt"

	"scaffoldgen/internal/introspect"
)

// Placeholder is the token emitted for a storage type with no mapping. It is
// meant to be seen and fixed by hand in the generated output.
func Placeholder(raw string) string {
	return fmt.Sprintf("??? (%s)", raw)
}

// EntityType is the Go type of an entity field holding values of t.
func EntityType(t introspect.StorageType, raw string) string {
	switch t {
	case introspect.TypeInteger:
		return "int64"
	case introspect.TypeString:
		return "string"
	case introspect.TypeBoolean:
		return "bool"
	case introspect.TypeFloat:
		return "float64"
	case introspect.TypeDateTime, introspect.TypeDate:
		return "time.Time"
	case introspect.TypeTime, introspect.TypeDecimal:
		return "string"
	case introspect.TypeIntegerArray:
		return "[]int64"
	case introspect.TypeStringArray:
		return "[]string"
	case introspect.TypeJSON:
		return "map[string]any"
	case introspect.TypeUnmapped:
		return Placeholder(raw)
	}
	return Placeholder(raw)
}

// ValidationType is the Go type of a validation schema field for t. Scalars are
// pointers so that an absent value can be told apart from a zero value.
func ValidationType(t introspect.StorageType, raw string) string {
	switch t {
	case introspect.TypeIntegerArray, introspect.TypeStringArray, introspect.TypeJSON:
		return EntityType(t, raw)
	case introspect.TypeUnmapped:
		return Placeholder(raw)
	}
	return "*" + EntityType(t, raw)
}

// ValidationExpect is the validator rule checking the shape of a value of t.
// An empty string means the Go type alone is enough.
func ValidationExpect(t introspect.StorageType, raw string) string {
	switch t {
	case introspect.TypeInteger, introspect.TypeFloat, introspect.TypeDecimal:
		return "numeric"
	case introspect.TypeBoolean:
		return "boolean"
	case introspect.TypeTime:
		return "datetime=15:04:05"
	case introspect.TypeString, introspect.TypeDateTime, introspect.TypeDate,
		introspect.TypeIntegerArray, introspect.TypeStringArray, introspect.TypeJSON:
		return ""
	case introspect.TypeUnmapped:
		return Placeholder(raw)
	}
	return Placeholder(raw)
}

// ValidationArrayExtra is the per-element rule for array types, empty otherwise.
func ValidationArrayExtra(t introspect.StorageType) string {
	switch t {
	case introspect.TypeIntegerArray:
		return "dive,numeric"
	case introspect.TypeStringArray:
		return "dive"
	}
	return ""
}

// ControlKind is the form control used to edit a value of t.
func ControlKind(t introspect.StorageType, raw string) string {
	switch t {
	case introspect.TypeInteger, introspect.TypeFloat, introspect.TypeDecimal:
		return "number"
	case introspect.TypeString:
		return "text"
	case introspect.TypeBoolean:
		return "checkbox"
	case introspect.TypeDateTime:
		return "datetime"
	case introspect.TypeDate:
		return "date"
	case introspect.TypeTime:
		return "time"
	case introspect.TypeIntegerArray, introspect.TypeStringArray:
		return "multi"
	case introspect.TypeJSON:
		return "textarea"
	case introspect.TypeUnmapped:
		return Placeholder(raw)
	}
	return Placeholder(raw)
}
