// AngelaMos | 2026
// main.go

package main

import (
	"log/slog"
	"os"

	"github.com/carterperez-dev/tagback/internal/tagctl"
)

func main() {
	if err := tagctl.App().Run(os.Args); err != nil {
		slog.Error("tagctl failed", "error", err)
		os.Exit(1)
	}
}
