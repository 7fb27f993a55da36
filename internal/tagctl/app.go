// AngelaMos | 2026
// app.go

// Package tagctl implements the operator CLI: key generation, migrations,
// config checks, keyspace reporting and offline code inspection.
package tagctl

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/carterperez-dev/tagback/internal/config"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func App() *cli.App {
	return &cli.App{
		Name:    "tagctl",
		Usage:   "tagback operator tool",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				EnvVars: []string{"TAGBACK_CONFIG"},
				Value:   "config.yaml",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Commands: []*cli.Command{
			KeygenCommand(),
			TokenCommand(),
			MigrateCommand(),
			CheckCommand(),
			KeyspaceCommand(),
			CodeCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return cfg, nil
}

// printResult writes v as JSON under --json, otherwise as "key: value"
// lines from fields.
func printResult(c *cli.Context, v any, fields [][2]string) error {
	w := c.App.Writer

	if c.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	return printFields(w, fields)
}

func printFields(w io.Writer, fields [][2]string) error {
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f[0], f[1]); err != nil {
			return err
		}
	}
	return nil
}
