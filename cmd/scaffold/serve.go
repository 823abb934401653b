package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/urfave/cli/v3"

	"scaffoldgen/internal/logger"
	"scaffoldgen/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve schema browsing and scaffold previews over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "http port (overrides config)",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "web",
				Usage: "web ui directory",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if p := cmd.Int("port"); p > 0 {
		cfg.Server.Port = int(p)
	}

	opts := []server.Option{server.WithWebDir(cmd.String("web"))}
	// a schema source is optional here; /api/connect can supply one later
	if provider, _, err := openProvider(cmd, cfg); err == nil {
		opts = append(opts, server.WithProvider(provider))
	} else if !errors.Is(err, errNoSchema) {
		logger.Error("schema source: %v", err)
	}

	s := server.New(cfg, opts...)
	defer s.Close()
	srv := s.HTTPServer()

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
