// guardian: tiered content moderation service
//
// Runs the moderation decision pipeline (blocklist matching, attack signature
// scanning, link reputation, AI classification) behind a small HTTP API, with
// an admin surface for policies and the human review queue.
package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "guardian",
		Usage:   "content moderation decision pipeline",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the moderation service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database connection string (sqlite:// or postgres://)",
			Value:   "sqlite://data/guardian/guardian.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for policy cache and usage counters; empty disables redis",
			EnvVars: []string{"GUARDIAN_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":8300",
			EnvVars: []string{"GUARDIAN_BIND"},
		},
		&cli.StringFlag{
			Name:    "urlvote-host",
			Usage:   "vote-based URL reputation service; empty disables",
			EnvVars: []string{"GUARDIAN_URLVOTE_HOST"},
		},
		&cli.StringFlag{
			Name:    "urlvote-api-key",
			EnvVars: []string{"GUARDIAN_URLVOTE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "threatlist-host",
			Usage:   "threat-list URL lookup service; empty disables",
			EnvVars: []string{"GUARDIAN_THREATLIST_HOST"},
		},
		&cli.StringFlag{
			Name:    "threatlist-api-key",
			EnvVars: []string{"GUARDIAN_THREATLIST_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "classifier-host",
			Usage:   "content-safety classifier endpoint; empty disables the AI tier",
			EnvVars: []string{"GUARDIAN_CLASSIFIER_HOST"},
		},
		&cli.StringFlag{
			Name:    "classifier-api-token",
			EnvVars: []string{"GUARDIAN_CLASSIFIER_API_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "incoming webhook for blocked-content notifications; empty disables",
			EnvVars: []string{"GUARDIAN_SLACK_WEBHOOK_URL", "SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "lexicon-file",
			Usage:   "path to a JSON file with site-wide blocked terms and domains",
			EnvVars: []string{"GUARDIAN_LEXICON_FILE"},
		},
		&cli.DurationFlag{
			Name:    "policy-cache-ttl",
			Usage:   "bound on policy staleness when the redis cache is enabled",
			Value:   30 * time.Second,
			EnvVars: []string{"GUARDIAN_POLICY_CACHE_TTL"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"GUARDIAN_LOG_LEVEL", "LOG_LEVEL"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := configLogger(cctx, os.Stdout)

		srv, err := NewServer(cctx, logger)
		if err != nil {
			return err
		}
		return srv.RunAPI(cctx.String("bind"))
	},
}

func configLogger(cctx *cli.Context, writer *os.File) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
