package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"scaffoldgen/internal/db"
	_ "scaffoldgen/internal/db/extractors"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/internal/server"
	"scaffoldgen/pkg/config"
)

func main() {
	// flags
	cfgPath := flag.String("config", filepath.Join(".", "configs", "example.yaml"), "path to config YAML")
	driverFlag := flag.String("driver", "", "db driver override (postgres,pgx,mysql,sqlite,sqlserver,godror)")
	dsnFlag := flag.String("dsn", "", "dsn override")
	schemaFile := flag.String("schema-file", "", "serve a static schema YAML instead of a database")
	port := flag.Int("port", 0, "http port (overrides config)")
	timeout := flag.Int("timeout", 0, "db connect timeout seconds")
	webdir := flag.String("web", filepath.Join(".", "web"), "web ui directory")
	debug := flag.Bool("debug", false, "log debug output")
	flag.Parse()
	logger.SetDebug(*debug)

	err := run(*cfgPath, *driverFlag, *dsnFlag, *schemaFile, *port, *timeout, *webdir)
	if err != nil {
		logger.Error("%v", err)
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(cfgPath, driver, dsn, schemaFile string, port, timeout int, webdir string) error {
	// attempt to load config file (optional)
	var appCfg config.AppConfig
	if cfgPath != "" {
		logger.Info("config file %s", cfgPath)
		if c, err := config.LoadFile(cfgPath); err == nil {
			appCfg = c
		} else {
			logger.Error("error reading config file: %v", err)
		}
	}
	if err := config.ApplyEnv(&appCfg); err != nil {
		logger.Error("error reading env: %v", err)
	}

	// allow CLI overrides
	if driver != "" && dsn != "" {
		appCfg.Database = config.DBConfig{Type: driver, DSN: dsn}
	}
	appCfg.Database.TimeoutSeconds = cmp.Or(timeout, appCfg.Database.TimeoutSeconds)
	appCfg.Server.Port = cmp.Or(port, appCfg.Server.Port)
	appCfg.ApplyDefaults()

	opts := []server.Option{server.WithWebDir(webdir)}
	switch {
	case schemaFile != "":
		sp, err := introspect.LoadStaticFile(schemaFile)
		if err != nil {
			return fmt.Errorf("error reading schema file: %w", err)
		}
		opts = append(opts, server.WithProvider(sp))
	case appCfg.Database.Type != "":
		drv, connStr, err := config.BuildDriverAndDSN(appCfg.Database)
		if err != nil {
			logger.Error("error building DSN: %v", err)
			break
		}
		conn, err := db.Connect(drv, connStr, appCfg.Database.TimeoutSeconds)
		if err != nil {
			logger.Error("error connecting to %s: %v", drv, err)
			break
		}
		opts = append(opts, server.WithProvider(conn))
	}

	s := server.New(appCfg, opts...)
	defer s.Close()
	return s.HTTPServer().ListenAndServe()
}
