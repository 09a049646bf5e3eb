package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
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
		Usage:   "guild abuse detection and escalation daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "discord-token",
			Usage:    "bot token for the gateway session",
			Required: true,
			EnvVars:  []string{"GUARDIAN_DISCORD_TOKEN", "DISCORD_TOKEN"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for counter state; in-memory when empty",
			EnvVars: []string{"GUARDIAN_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "audit-db",
			Usage:   "sqlite file for the moderation audit log; disabled when empty",
			Value:   "data/guardian/audit.db",
			EnvVars: []string{"GUARDIAN_AUDIT_DB"},
		},
		&cli.StringFlag{
			Name:    "policies-json",
			Usage:   "JSON file of per-guild policy overrides",
			EnvVars: []string{"GUARDIAN_POLICIES_JSON"},
		},
		&cli.StringFlag{
			Name:    "banned-words",
			Usage:   "comma- or newline-separated word list applied to every guild without an override",
			EnvVars: []string{"GUARDIAN_BANNED_WORDS"},
		},
		&cli.StringFlag{
			Name:    "toxicity-host",
			Usage:   "base URL of the content scoring API; scoring disabled when empty",
			EnvVars: []string{"GUARDIAN_TOXICITY_HOST"},
		},
		&cli.StringFlag{
			Name:    "toxicity-token",
			Usage:   "API token for the content scoring API",
			EnvVars: []string{"GUARDIAN_TOXICITY_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"GUARDIAN_METRICS_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "janitor-interval",
			Usage:   "how often expired counter state is swept",
			Value:   time.Minute,
			EnvVars: []string{"GUARDIAN_JANITOR_INTERVAL"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv, err := NewServer(Config{
			DiscordToken:    cctx.String("discord-token"),
			RedisURL:        cctx.String("redis-url"),
			AuditDBPath:     cctx.String("audit-db"),
			PoliciesJSON:    cctx.String("policies-json"),
			BannedWords:     cctx.String("banned-words"),
			ToxicityHost:    cctx.String("toxicity-host"),
			ToxicityToken:   cctx.String("toxicity-token"),
			JanitorInterval: cctx.Duration("janitor-interval"),
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run automod service: %w", err)
		}
		return nil
	},
}
