package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"scaffoldgen/internal/generator"
	"scaffoldgen/internal/scaffold"
)

var errTableRequired = errors.New("table is required")

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate the scaffold of one table",
		ArgsUsage: "<table>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "short-name",
				Usage: "name the artifacts are derived from (default: the table name)",
			},
			&cli.StringFlag{
				Name:     "applet",
				Aliases:  []string{"a"},
				Usage:    "applet the scaffold belongs to, or \"other\" for a new one",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "other",
				Usage: "name of the new applet when --applet=other",
			},
			&cli.StringFlag{
				Name:     "program",
				Aliases:  []string{"p"},
				Usage:    "program name as shown in the menu",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "label-field",
				Usage: "column that names a row (default: guessed)",
			},
			&cli.StringFlag{
				Name:  "shared-repo",
				Usage: "existing repository to add the table to",
			},
			&cli.StringFlag{
				Name:  "nested-route-parent",
				Usage: "parent table of a nested route",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output directory (default: generator.output_dir)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite existing files",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "print the generated files instead of writing them",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	table := cmd.Args().First()
	if table == "" {
		return errTableRequired
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	provider, conn, err := openProvider(cmd, cfg)
	if err != nil {
		return err
	}
	deps := generator.Deps{Provider: provider, Settings: cfg.Generator}
	if conn != nil {
		defer conn.Close()
		deps.Introspector = conn
	}

	params := scaffold.Params{
		Table:             table,
		ShortName:         cmd.String("short-name"),
		Applet:            cmd.String("applet"),
		Other:             cmd.String("other"),
		Program:           cmd.String("program"),
		LabelField:        cmd.String("label-field"),
		SharedRepoName:    cmd.String("shared-repo"),
		NestedRouteParent: cmd.String("nested-route-parent"),
	}
	if params.ShortName == "" {
		params.ShortName = table
	}

	src, err := generator.Run(ctx, deps, params)
	if err != nil {
		return err
	}
	if cmd.Bool("print") {
		return printSources(cmd.Root().Writer, src)
	}
	out := cmd.String("out")
	if out == "" {
		out = cfg.Generator.OutputDir
	}
	if err := src.Write(out, cmd.Bool("force")); err != nil {
		return err
	}
	for _, p := range src.FileList() {
		fmt.Fprintln(cmd.Root().Writer, p)
	}
	return nil
}

func printSources(w io.Writer, src *generator.Sources) error {
	for _, p := range src.FileList() {
		if _, err := fmt.Fprintf(w, "==> %s <==\n%s\n", p, src.Files[p]); err != nil {
			return err
		}
	}
	return nil
}
