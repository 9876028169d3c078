package aicc

import (
	"context"
	"crypto/tls"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/fire-tally-service/internal/config"
	"github.com/couchcryptid/fire-tally-service/internal/domain"
	"github.com/couchcryptid/fire-tally-service/internal/observability"
)

// maxErrorBody bounds how much of a non-200 response is echoed into errors.
const maxErrorBody = 512

// Client retrieves the AICC daily tally CSVs. A feed location is either an
// http(s) URL or a local file path (optionally prefixed with file://).
type Client struct {
	httpClient *http.Client
	locations  map[domain.FeedKind]string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for the configured statewide and zoned locations.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		// The AICC host has historically served an incomplete certificate chain.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via TALLY_INSECURE_TLS
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.FetchTimeout,
			Transport: transport,
		},
		locations: map[domain.FeedKind]string{
			domain.FeedStatewide: cfg.StatewideURL,
			domain.FeedZoned:     cfg.ZonedURL,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchTable downloads and parses one feed. Every cell is kept as a string;
// typing and validation belong to domain.Sanitize.
func (c *Client) FetchTable(ctx context.Context, feed domain.FeedKind) (domain.RawTable, error) {
	location, ok := c.locations[feed]
	if !ok || location == "" {
		return domain.RawTable{}, fmt.Errorf("no location configured for %s feed", feed)
	}

	start := time.Now()
	table, err := c.fetch(ctx, location)
	c.metrics.FetchDuration.WithLabelValues(string(feed)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(string(feed), "error").Inc()
		return domain.RawTable{}, err
	}
	c.metrics.FetchRequests.WithLabelValues(string(feed), "success").Inc()

	c.logger.Debug("feed fetched",
		"feed", feed,
		"location", location,
		"rows", len(table.Rows),
		"columns", len(table.Header),
		"duration", time.Since(start),
	)
	return table, nil
}

func (c *Client) fetch(ctx context.Context, location string) (domain.RawTable, error) {
	body, err := c.open(ctx, location)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer body.Close()

	return ParseCSV(body)
}

func (c *Client) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !isRemote(location) {
		f, err := os.Open(strings.TrimPrefix(location, "file://"))
		if err != nil {
			return nil, fmt.Errorf("open local feed: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("upstream error: status %d: %s", resp.StatusCode, body)
	}
	return resp.Body, nil
}

// ParseCSV reads a CSV with a header row into a RawTable of strings. A
// leading UTF-8 BOM is dropped and a header with no data rows yields an empty
// table. Ragged rows and unterminated quotes are errors.
func ParseCSV(r io.Reader) (domain.RawTable, error) {
	records, err := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))).ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	switch len(records) {
	case 0:
		return domain.RawTable{}, fmt.Errorf("parse csv: no header row")
	case 1:
		// LoadRecords rejects a frame without rows.
		return domain.RawTable{Header: records[0], Rows: [][]string{}}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", df.Err)
	}

	records = df.Records()
	return domain.RawTable{Header: records[0], Rows: records[1:]}, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
