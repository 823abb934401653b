package introspect

import (
	"regexp"
	"strconv"
	"strings"
)

// StorageType is the closed set of column storage types the generator knows how
// to map. TypeUnmapped stands for anything else and is a valid value.
type StorageType int

const (
	TypeUnmapped StorageType = iota
	TypeInteger
	TypeString
	TypeBoolean
	TypeFloat
	TypeDateTime
	TypeDate
	TypeTime
	TypeDecimal
	TypeIntegerArray
	TypeStringArray
	TypeJSON
)

var typeNames = [...]string{
	TypeUnmapped:     "unmapped",
	TypeInteger:      "integer",
	TypeString:       "string",
	TypeBoolean:      "boolean",
	TypeFloat:        "float",
	TypeDateTime:     "datetime",
	TypeDate:         "date",
	TypeTime:         "time",
	TypeDecimal:      "decimal",
	TypeIntegerArray: "integer_array",
	TypeStringArray:  "string_array",
	TypeJSON:         "jsonb",
}

// StorageTypes lists every mapped variant, excluding TypeUnmapped.
func StorageTypes() []StorageType {
	return []StorageType{
		TypeInteger, TypeString, TypeBoolean, TypeFloat, TypeDateTime, TypeDate,
		TypeTime, TypeDecimal, TypeIntegerArray, TypeStringArray, TypeJSON,
	}
}

func (t StorageType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[TypeUnmapped]
	}
	return typeNames[t]
}

// Temporal reports whether values of t are dates or timestamps.
func (t StorageType) Temporal() bool {
	return t == TypeDate || t == TypeDateTime
}

func (t StorageType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *StorageType) UnmarshalText(b []byte) error {
	*t = ParseStorageType(string(b))
	return nil
}

// ParseStorageType is the inverse of String. Unknown names yield TypeUnmapped.
func ParseStorageType(s string) StorageType {
	for i, n := range typeNames {
		if n == s {
			return StorageType(i)
		}
	}
	return TypeUnmapped
}

var typeArgs = regexp.MustCompile(`\s*\(([^)]*)\)`)

// NormalizeType maps a dialect specific type name onto a StorageType.
func NormalizeType(raw string) StorageType {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return TypeUnmapped
	}

	// tinyint(1) is the MySQL boolean
	if strings.HasPrefix(s, "tinyint(1)") {
		return TypeBoolean
	}

	var args []string
	if m := typeArgs.FindStringSubmatch(s); m != nil {
		args = strings.Split(m[1], ",")
	}
	base := strings.TrimSpace(typeArgs.ReplaceAllString(s, ""))
	base = strings.TrimSuffix(base, " unsigned")

	switch {
	case strings.HasSuffix(base, "[]"):
		return arrayOf(NormalizeType(strings.TrimSuffix(base, "[]")))
	case strings.HasPrefix(base, "_"):
		return arrayOf(NormalizeType(base[1:]))
	}

	switch base {
	case "int", "integer", "smallint", "bigint", "mediumint", "tinyint",
		"int2", "int4", "int8", "serial", "smallserial", "bigserial", "serial4", "serial8":
		return TypeInteger
	case "varchar", "character varying", "char", "character", "bpchar", "nchar", "nvarchar",
		"text", "ntext", "citext", "tinytext", "mediumtext", "longtext", "varchar2", "nvarchar2",
		"clob", "nclob", "uuid", "uniqueidentifier", "enum", "string", "name":
		return TypeString
	case "bool", "boolean", "bit":
		return TypeBoolean
	case "float", "float4", "float8", "real", "double", "double precision", "binary_float", "binary_double":
		return TypeFloat
	case "numeric", "decimal", "money", "smallmoney":
		return TypeDecimal
	case "number":
		// NUMBER(p) and NUMBER(p,0) hold integers
		if len(args) == 1 || (len(args) == 2 && strings.TrimSpace(args[1]) == "0") {
			if _, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil {
				return TypeInteger
			}
		}
		return TypeDecimal
	case "date":
		return TypeDate
	case "datetime", "datetime2", "smalldatetime", "datetimeoffset", "timestamptz",
		"timestamp", "timestamp with time zone", "timestamp without time zone",
		"timestamp with local time zone":
		return TypeDateTime
	case "time", "timetz", "time with time zone", "time without time zone":
		return TypeTime
	case "json", "jsonb":
		return TypeJSON
	}
	return TypeUnmapped
}

func arrayOf(elem StorageType) StorageType {
	switch elem {
	case TypeInteger:
		return TypeIntegerArray
	case TypeString:
		return TypeStringArray
	default:
		return TypeUnmapped
	}
}
