// AngelaMos | 2026
// commands.go

package tagctl

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/carterperez-dev/tagback/internal/auth"
	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/identifier"
	"github.com/carterperez-dev/tagback/internal/middleware"
	"github.com/carterperez-dev/tagback/internal/migrations"
	"github.com/carterperez-dev/tagback/internal/tag"
)

const dbTimeout = 30 * time.Second

func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate an ES256 key pair for access tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "private", Value: "keys/private.pem", Usage: "private key output path"},
			&cli.StringFlag{Name: "public", Value: "keys/public.pem", Usage: "public key output path"},
		},
		Action: func(c *cli.Context) error {
			if err := auth.GenerateKeyPair(c.String("private"), c.String("public")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return printFields(c.App.Writer, [][2]string{
				{"private", c.String("private")},
				{"public", c.String("public")},
			})
		},
	}
}

func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint an access token for an owner or operator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sub", Required: true, Usage: "subject (owner id)"},
			&cli.StringFlag{Name: "role", Value: middleware.RoleUser, Usage: "user or admin"},
		},
		Action: func(c *cli.Context) error {
			role := c.String("role")
			if role != middleware.RoleUser && role != middleware.RoleAdmin {
				return cli.Exit(fmt.Sprintf("unknown role %q", role), 1)
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			manager, err := auth.NewJWTManager(cfg.JWT)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			signed, err := manager.CreateAccessToken(auth.AccessTokenClaims{
				UserID: c.String("sub"),
				Role:   role,
			})
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			_, err = fmt.Fprintln(c.App.Writer, signed)
			return err
		},
	}
}

func MigrateCommand() *cli.Command {
	run := func(apply func(context.Context, *core.Database) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Context, dbTimeout)
			defer cancel()

			db, err := core.NewDatabase(ctx, cfg.Database)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer db.Close() //nolint:errcheck // process exits next

			if err := apply(ctx, db); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply pending migrations",
				Action: run(func(ctx context.Context, db *core.Database) error {
					return migrations.Up(ctx, db.DB.DB)
				}),
			},
			{
				Name:  "status",
				Usage: "Show applied migrations",
				Action: run(func(ctx context.Context, db *core.Database) error {
					return migrations.Status(ctx, db.DB.DB)
				}),
			},
		},
	}
}

type checkReport struct {
	Environment  string `json:"environment"`
	Address      string `json:"address"`
	MinLatency   string `json:"lookup_min_latency"`
	MaxAttempts  int    `json:"allocation_max_attempts"`
	LookupLimit  int    `json:"lookup_requests_per_minute"`
	OtelEnabled  bool   `json:"otel_enabled"`
	QueueKey     string `json:"contact_queue_key"`
	SecretLength int    `json:"decoy_secret_bytes"`
}

func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate configuration without starting the server",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			report := checkReport{
				Environment:  cfg.App.Environment,
				Address:      cfg.Server.Address(),
				MinLatency:   cfg.Lookup.MinLatency.String(),
				MaxAttempts:  cfg.Allocation.MaxAttempts,
				LookupLimit:  cfg.RateLimit.LookupRequests,
				OtelEnabled:  cfg.Otel.Enabled,
				QueueKey:     cfg.Contact.QueueKey,
				SecretLength: len(cfg.Lookup.DecoySecret),
			}

			return printResult(c, report, [][2]string{
				{"status", "ok"},
				{"environment", report.Environment},
				{"address", report.Address},
				{"lookup min latency", report.MinLatency},
				{"allocation max attempts", strconv.Itoa(report.MaxAttempts)},
				{"lookup requests/min", strconv.Itoa(report.LookupLimit)},
				{"otel", strconv.FormatBool(report.OtelEnabled)},
				{"contact queue", report.QueueKey},
			})
		},
	}
}

func KeyspaceCommand() *cli.Command {
	return &cli.Command{
		Name:  "keyspace",
		Usage: "Report identifier keyspace usage",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "offline", Usage: "print capacity without connecting to the database"},
		},
		Action: func(c *cli.Context) error {
			stats := tag.KeyspaceStats{
				Capacity:  identifier.Capacity(),
				Remaining: identifier.Capacity(),
			}

			if !c.Bool("offline") {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(c.Context, dbTimeout)
				defer cancel()

				db, err := core.NewDatabase(ctx, cfg.Database)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				defer db.Close() //nolint:errcheck // process exits next

				repo := tag.NewRepository(db.DB)
				svc := tag.NewService(repo, tag.NewTxRunner(db.DB), tag.NewAllocator(), nil)

				stats, err = svc.KeyspaceStats(ctx)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}

			return printResult(c, stats, [][2]string{
				{"allocated", strconv.FormatInt(stats.Allocated, 10)},
				{"capacity", strconv.FormatInt(stats.Capacity, 10)},
				{"remaining", strconv.FormatInt(stats.Remaining, 10)},
				{"utilization", strconv.FormatFloat(stats.Utilization*100, 'f', 4, 64) + "%"},
			})
		},
	}
}

type codeReport struct {
	Input       string   `json:"input"`
	Candidate   string   `json:"candidate"`
	Valid       bool     `json:"valid"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func CodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "code",
		Usage: "Inspect or generate display codes offline",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Normalize and validate a code as a finder typed it",
				ArgsUsage: "<code>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one code", 2)
					}

					raw := c.Args().First()
					candidate, diagnostics := identifier.Suggest(raw)
					report := codeReport{
						Input:       raw,
						Candidate:   candidate,
						Valid:       identifier.IsValid(candidate),
						Diagnostics: diagnostics,
					}

					fields := [][2]string{
						{"candidate", report.Candidate},
						{"valid", strconv.FormatBool(report.Valid)},
					}
					for _, d := range report.Diagnostics {
						fields = append(fields, [2]string{"note", d})
					}
					return printResult(c, report, fields)
				},
			},
			{
				Name:  "generate",
				Usage: "Draw random valid codes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1},
				},
				Action: func(c *cli.Context) error {
					for range c.Int("count") {
						code, err := generateValid()
						if err != nil {
							return cli.Exit(err.Error(), 1)
						}
						if _, err := fmt.Fprintln(c.App.Writer, code); err != nil {
							return err
						}
					}
					return nil
				},
			},
		},
	}
}

func generateValid() (string, error) {
	for range tag.DefaultMaxAttempts {
		code, err := identifier.Generate(rand.Reader)
		if err != nil {
			return "", err
		}
		if identifier.IsValid(code) {
			return code, nil
		}
	}
	return "", tag.ErrAllocationExhausted
}
