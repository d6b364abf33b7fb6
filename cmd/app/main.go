package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/mutanox/internal/adapters/provider"
	"github.com/atvirokodosprendimai/mutanox/internal/app"
	"github.com/atvirokodosprendimai/mutanox/internal/core/usecase"
)

func main() {
	cmd := &cli.Command{
		Name:  "mutanox",
		Usage: "API-key gateway for personal-records lookups",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Sources: cli.EnvVars("MUTANOX_CONFIG"),
				Usage:   "Optional TOML file; flags and environment variables take precedence",
			},
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Sources: cli.EnvVars("MUTANOX_ADDR"),
				Usage:   "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   app.StoreFile,
				Sources: cli.EnvVars("MUTANOX_STORE"),
				Usage:   "Key store engine: file or sqlite",
			},
			&cli.StringFlag{
				Name:    "keys-file",
				Value:   "./api_keys.json",
				Sources: cli.EnvVars("MUTANOX_KEYS_FILE"),
				Usage:   "JSON key store path (file engine)",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "./mutanox.sqlite",
				Sources: cli.EnvVars("MUTANOX_DB_PATH"),
				Usage:   "SQLite file path (sqlite engine)",
			},
			&cli.StringFlag{
				Name:    "admin-key",
				Sources: cli.EnvVars("MUTANOX_ADMIN_KEY"),
				Usage:   "Reserved admin API key",
			},
			&cli.StringFlag{
				Name:    "test-key",
				Value:   usecase.DefaultTestKey,
				Sources: cli.EnvVars("MUTANOX_TEST_KEY"),
				Usage:   "User key seeded alongside the admin key",
			},
			&cli.StringFlag{
				Name:    "key-prefix",
				Value:   usecase.DefaultKeyPrefix,
				Sources: cli.EnvVars("MUTANOX_KEY_PREFIX"),
				Usage:   "Prefix of issued API keys",
			},
			&cli.StringFlag{
				Name:    "provider-url",
				Value:   provider.DefaultBaseURL,
				Sources: cli.EnvVars("MUTANOX_PROVIDER_URL"),
				Usage:   "Base URL of the lookup provider",
			},
			&cli.DurationFlag{
				Name:    "provider-timeout",
				Value:   provider.DefaultTimeout,
				Sources: cli.EnvVars("MUTANOX_PROVIDER_TIMEOUT"),
				Usage:   "Timeout of one provider call",
			},
			&cli.FloatFlag{
				Name:    "provider-rps",
				Sources: cli.EnvVars("MUTANOX_PROVIDER_RPS"),
				Usage:   "Provider calls per second, 0 for unlimited",
			},
			&cli.IntFlag{
				Name:    "provider-burst",
				Value:   1,
				Sources: cli.EnvVars("MUTANOX_PROVIDER_BURST"),
				Usage:   "Provider rate limiter burst",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("MUTANOX_LOG_LEVEL"),
				Usage:   "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Sources: cli.EnvVars("MUTANOX_LOG_FORMAT"),
				Usage:   "text or json",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := app.Config{
				Addr:            c.String("addr"),
				Store:           c.String("store"),
				KeysFile:        c.String("keys-file"),
				DBPath:          c.String("db-path"),
				AdminKey:        c.String("admin-key"),
				TestKey:         c.String("test-key"),
				KeyPrefix:       c.String("key-prefix"),
				ProviderURL:     c.String("provider-url"),
				ProviderTimeout: c.Duration("provider-timeout"),
				ProviderRPS:     c.Float("provider-rps"),
				ProviderBurst:   int(c.Int("provider-burst")),
				LogLevel:        c.String("log-level"),
				LogFormat:       c.String("log-format"),
			}
			if path := c.String("config"); path != "" {
				if err := app.MergeFile(&cfg, path, c.IsSet); err != nil {
					return err
				}
			}

			logger, err := app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting", "addr", cfg.Addr, "store", cfg.Store, "provider", cfg.ProviderURL)
			return app.Run(ctx, cfg, logger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
