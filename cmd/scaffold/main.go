package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	_ "scaffoldgen/internal/db/extractors"
	"scaffoldgen/internal/logger"
)

func main() {
	defer logger.Sync()
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "scaffold",
		Usage: "Generate CRUD scaffolds from a database table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config YAML",
				Sources: cli.EnvVars("SCAFFOLD_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file with SCAFFOLD_* overrides",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "db driver override (postgres,pgx,mysql,sqlite,sqlserver,godror)",
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "dsn override",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "db timeout seconds",
			},
			&cli.StringFlag{
				Name:    "schema-file",
				Aliases: []string{"s"},
				Usage:   "read the schema from a YAML file instead of a database",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log debug output",
				Sources: cli.EnvVars("SCAFFOLD_DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.SetDebug(cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			tablesCommand(),
			serveCommand(),
		},
	}
}
