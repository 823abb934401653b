package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"scaffoldgen/internal/introspect"
)

var errCannotList = errors.New("schema source cannot list tables")

func tablesCommand() *cli.Command {
	return &cli.Command{
		Name:   "tables",
		Usage:  "List the tables a scaffold can be generated for",
		Action: runTables,
	}
}

func runTables(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	provider, conn, err := openProvider(cmd, cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
	}
	lister, ok := provider.(introspect.TableLister)
	if !ok {
		return errCannotList
	}
	tables, err := lister.TableNames(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(cmd.Root().Writer, t)
	}
	return nil
}
