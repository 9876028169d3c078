// Command inspect loads the AICC tally feeds once, from URLs or local CSV
// files, and prints seasons, zones, or styled chart series.
//
// Usage:
//
//	go run ./cmd/inspect seasons
//	go run ./cmd/inspect statewide --from 152 --to 244 --smooth
//	go run ./cmd/inspect zone TAS --statewide s.csv --zoned z.csv
//	go run ./cmd/inspect year 2022 --format text
package main

import (
	"os"

	"github.com/couchcryptid/fire-tally-service/internal/observability"
)

func main() {
	if err := newRootCmd(os.Stdout, observability.NewMetrics()).Execute(); err != nil {
		os.Exit(1)
	}
}
