package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/pkg/config"
)

var errNoSchema = errors.New("no schema source: set --schema-file, --driver and --dsn, or a database section in the config")

// loadConfig merges the config file, the env file and the global flags, in
// rising precedence.
func loadConfig(cmd *cli.Command) (config.AppConfig, error) {
	var cfg config.AppConfig
	if path := cmd.String("config"); path != "" {
		c, err := config.LoadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		cfg = c
		logger.Debug("config file %s", path)
	}
	if err := config.ApplyEnv(&cfg, cmd.String("env-file")); err != nil {
		return cfg, err
	}
	if d, dsn := cmd.String("driver"), cmd.String("dsn"); d != "" && dsn != "" {
		cfg.Database = config.DBConfig{Type: d, DSN: dsn, TimeoutSeconds: cfg.Database.TimeoutSeconds}
	}
	if t := cmd.Int("timeout"); t > 0 {
		cfg.Database.TimeoutSeconds = int(t)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// openProvider returns the schema provider selected by the flags. conn is
// nil for a static schema.
func openProvider(cmd *cli.Command, cfg config.AppConfig) (introspect.Provider, *db.Conn, error) {
	if path := cmd.String("schema-file"); path != "" {
		sp, err := introspect.LoadStaticFile(path)
		if err != nil {
			return nil, nil, err
		}
		return sp, nil, nil
	}
	if cfg.Database.Type == "" {
		return nil, nil, errNoSchema
	}
	driver, dsn, err := config.BuildDriverAndDSN(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Connect(driver, dsn, cfg.Database.TimeoutSeconds)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", driver, err)
	}
	return conn, conn, nil
}
