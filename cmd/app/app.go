package main

import (
	"context"
	"os"

	"github.com/DRSN-tech/go-recommender/internal/app"
	config "github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/DRSN-tech/go-recommender/pkg/postgres"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	var (
		logLevel  string
		logFormat string
		log       *logger.ZeroLogger
	)

	serve := &cli.Command{
		Name:  "serve",
		Usage: "Run HTTP and gRPC servers with the outbox publisher",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serveAction(log)
		},
	}

	return &cli.Command{
		Name:    "recommender",
		Usage:   "Product recommendation service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Value:       "info",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "json or console",
				Value:       "json",
				Sources:     cli.EnvVars("LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			log = logger.New(logFormat, logLevel).With("service", "recommender")
			return ctx, nil
		},
		// без подкоманды запускается сервер
		Action: serve.Action,
		Commands: []*cli.Command{
			serve,
			{
				Name:  "migrate",
				Usage: "Apply database migrations and exit",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return migrateAction(ctx, log)
				},
			},
		},
	}
}

func serveAction(log *logger.ZeroLogger) error {
	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "invalid configuration")
		return err
	}

	log.Infof("version=%s ranker=%s sessions=%s llm=%s",
		version, cfg.Recommend.RankerBackend, cfg.Session.Backend, cfg.LLM.Provider)

	recommender, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to start recommender")
		return err
	}

	return recommender.Run()
}

func migrateAction(ctx context.Context, log *logger.ZeroLogger) error {
	dbCfg, err := config.LoadDB(log)
	if err != nil {
		log.Errorf(err, "invalid database configuration")
		return err
	}

	db, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return e.Dependency(err)
	}
	defer db.Close()

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "migration failed")
		return err
	}

	return nil
}
