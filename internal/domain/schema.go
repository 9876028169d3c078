package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Upstream column names.
const (
	ColSitReportDate  = "SitReportDate"
	ColFireSeason     = "FireSeason"
	ColProtectionUnit = "ProtectionUnit"
	ColTotalAcres     = "TotalAcres"
)

// autoNamedRe matches names CSV readers invent for blank headers:
// pandas "Unnamed: 12" and gota "X0", "X1", ...
var autoNamedRe = regexp.MustCompile(`^(Unnamed(:\s*\d+)?|X\d+)$`)

// Columns returns the known-good column set for a feed, in output order.
// Every other upstream column (ID, Month, Day, TotalFires, HumanAcres,
// PrepLevel, ...) is discarded.
func (k FeedKind) Columns() []string {
	if k == FeedZoned {
		return []string{ColSitReportDate, ColFireSeason, ColProtectionUnit, ColTotalAcres}
	}
	return []string{ColSitReportDate, ColFireSeason, ColTotalAcres}
}

// IsArtifactColumn reports whether a header name is an unlabeled column
// produced by CSV parsing rather than a real upstream field.
func IsArtifactColumn(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || autoNamedRe.MatchString(name)
}

// CheckSchema verifies that header contains every column the feed requires.
func CheckSchema(kind FeedKind, header []string) error {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}

	var missing []string
	for _, col := range kind.Columns() {
		if !slices.Contains(trimmed, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s feed missing %s", ErrSchemaDrift, kind, strings.Join(missing, ", "))
	}
	return nil
}
