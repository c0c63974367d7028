package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/asaidimu/go-collisions/api"
	"github.com/asaidimu/go-collisions/core/criteria"
	"github.com/asaidimu/go-collisions/core/explorer"
	"github.com/asaidimu/go-collisions/core/interpreter"
	"github.com/asaidimu/go-collisions/sqlite"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	app := &cli.App{
		Name:  "collisions",
		Usage: "Filter traffic collision records by structured criteria or free text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			queryCommand(),
			parseCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	return config.Build()
}

func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:    "db-path",
			Value:   "collisions.db",
			Usage:   "SQLite database holding the collision table",
			EnvVars: []string{"DB_PATH"},
		},
		&cli.StringFlag{
			Name:    "table",
			Value:   sqlite.DefaultTable,
			EnvVars: []string{"COLLISIONS_TABLE"},
		},
		&cli.BoolFlag{
			Name:  "derive-year",
			Value: true,
			Usage: "compute a year column from crash_date when the table has none",
		},
	}
}

// openExplorer loads the configured table and wraps it in an Explorer.
func openExplorer(c *cli.Context, logger *zap.Logger) (*explorer.Explorer, error) {
	loader, db, err := sqlite.Open(c.Path("db-path"), logger, &sqlite.LoaderOptions{
		Table:      c.String("table"),
		DeriveYear: c.Bool("derive-year"),
	})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ds, err := loader.Load(c.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to load collisions: %w", err)
	}
	return explorer.New(ds, logger)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the collision query API over HTTP",
		Flags: append(datasetFlags(),
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":5000",
				EnvVars: []string{"LISTEN_ADDR"},
			},
		),
		Action: func(c *cli.Context) error {
			logger, err := newLogger(c.String("log-level"))
			if err != nil {
				return err
			}
			defer logger.Sync()

			x, err := openExplorer(c, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			srv := &http.Server{
				Addr:              c.String("addr"),
				Handler:           api.NewServer(x, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting API server", zap.String("address", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down API server")
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run one query and print the matching records as JSON",
		ArgsUsage: "[free text]",
		Flags: append(datasetFlags(),
			&cli.StringFlag{Name: "borough"},
			&cli.StringFlag{Name: "year"},
			&cli.StringFlag{Name: "vehicle-type"},
			&cli.StringFlag{Name: "contributing-factor"},
			&cli.StringFlag{Name: "injury-type", Usage: "Injured, Killed or None"},
			&cli.StringFlag{Name: "search", Usage: "substring searched across text columns"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum records printed, 0 for all"},
		),
		Action: func(c *cli.Context) error {
			logger, err := newLogger(c.String("log-level"))
			if err != nil {
				return err
			}
			defer logger.Sync()

			x, err := openExplorer(c, logger)
			if err != nil {
				return err
			}

			res, err := x.Query(c.Context, explorer.Request{
				Criteria: criteria.Criteria{
					criteria.KeyBorough:            c.String("borough"),
					criteria.KeyYear:               c.String("year"),
					criteria.KeyVehicleType:        c.String("vehicle-type"),
					criteria.KeyContributingFactor: c.String("contributing-factor"),
					criteria.KeyInjuryType:         c.String("injury-type"),
					criteria.KeySearch:             c.String("search"),
				},
				Text:  strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"query_id": res.ID,
				"criteria": res.Criteria.Map(),
				"count":    res.Total,
				"data":     res.Records,
			})
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Print the criteria extracted from free text",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				return fmt.Errorf("text is required")
			}
			return printJSON(interpreter.Parse(text).Map())
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
