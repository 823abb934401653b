package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Type           string `yaml:"type" json:"type"`
	Host           string `yaml:"host" json:"host"`
	Port           int    `yaml:"port" json:"port"`
	Username       string `yaml:"username" json:"username"`
	Password       string `yaml:"password" json:"password"`
	DatabaseName   string `yaml:"database_name" json:"database_name"`
	DSN            string `yaml:"dsn" json:"dsn"` // optional explicit DSN
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// PolymorphicLookup names the shared role table that is resolved through a
// database function instead of a join.
type PolymorphicLookup struct {
	Table     string `yaml:"table" json:"table"`
	Function  string `yaml:"function" json:"function"`
	RoleTable string `yaml:"role_table" json:"role_table"`
}

type GeneratorConfig struct {
	AppName           string            `yaml:"app_name" json:"app_name"`
	OutputDir         string            `yaml:"output_dir" json:"output_dir"`
	ForeignKeySuffix  string            `yaml:"foreign_key_suffix" json:"foreign_key_suffix"`
	PolymorphicLookup PolymorphicLookup `yaml:"polymorphic_lookup" json:"polymorphic_lookup"`
}

type AppConfig struct {
	Database  DBConfig        `yaml:"database" json:"database"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Generator GeneratorConfig `yaml:"generator" json:"generator"`
}

const (
	DefaultAppName          = "WebApp"
	DefaultForeignKeySuffix = "_id"
	DefaultTimeoutSeconds   = 10
	DefaultServerPort       = 8080
)

// Default returns an AppConfig with every optional value filled in.
func Default() AppConfig {
	var cfg AppConfig
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset optional values.
func (c *AppConfig) ApplyDefaults() {
	if c.Database.TimeoutSeconds <= 0 {
		c.Database.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	g := &c.Generator
	if g.AppName == "" {
		g.AppName = DefaultAppName
	}
	if g.OutputDir == "" {
		g.OutputDir = "."
	}
	if g.ForeignKeySuffix == "" {
		g.ForeignKeySuffix = DefaultForeignKeySuffix
	}
	if g.PolymorphicLookup.Table == "" {
		g.PolymorphicLookup.Table = "party_roles"
	}
	if g.PolymorphicLookup.Function == "" {
		g.PolymorphicLookup.Function = "fn_party_role_name"
	}
	if g.PolymorphicLookup.RoleTable == "" {
		g.PolymorphicLookup.RoleTable = "roles"
	}
}

// LoadFile loads YAML config from path.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv reads an optional .env file and lets SCAFFOLD_* variables override
// the database section.
func ApplyEnv(cfg *AppConfig, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}
	db := &cfg.Database
	setString(&db.Type, "SCAFFOLD_DB_TYPE")
	setString(&db.DSN, "SCAFFOLD_DSN")
	setString(&db.Host, "SCAFFOLD_DB_HOST")
	setString(&db.Username, "SCAFFOLD_DB_USER")
	setString(&db.Password, "SCAFFOLD_DB_PASSWORD")
	setString(&db.DatabaseName, "SCAFFOLD_DB_NAME")
	if v := os.Getenv("SCAFFOLD_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAFFOLD_DB_PORT: %w", err)
		}
		db.Port = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "pgx", "pgx/v5":
		return "pgx"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres", "pgx":
		driver = t
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}
