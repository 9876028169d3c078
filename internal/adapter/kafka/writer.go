package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fire-tally-service/internal/config"
	"github.com/couchcryptid/fire-tally-service/internal/domain"
	"github.com/couchcryptid/fire-tally-service/internal/observability"
	"github.com/couchcryptid/fire-tally-service/internal/tally"
)

// Snapshot summarizes one refreshed Bundle for downstream consumers.
type Snapshot struct {
	BundleID         string        `json:"bundle_id"`
	FetchedAt        time.Time     `json:"fetched_at"`
	Seasons          []int         `json:"seasons"`
	StatewideRecords int           `json:"statewide_records"`
	ZonedRecords     int           `json:"zoned_records"`
	SeasonTotals     []SeasonTotal `json:"season_totals"`
}

// SeasonTotal is the latest statewide tally reported for a season.
type SeasonTotal struct {
	Season     int       `json:"season"`
	ReportDate time.Time `json:"report_date"`
	DayOfYear  int       `json:"day_of_year"`
	TotalAcres float64   `json:"total_acres_burned"`
}

// Publisher writes a Snapshot to a Kafka topic after every cache refresh.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Publish serializes b into a Snapshot message keyed by bundle ID.
func (p *Publisher) Publish(ctx context.Context, b *tally.Bundle) error {
	msg, err := serializeSnapshot(newSnapshot(b))
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", b.ID, err)
	}
	p.metrics.SnapshotsPublished.Inc()
	return nil
}

// Hook adapts Publish to a cache refresh hook. Failures are logged only; a
// missed snapshot never affects serving.
func (p *Publisher) Hook(timeout time.Duration) tally.RefreshHook {
	return func(ctx context.Context, b *tally.Bundle) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := p.Publish(ctx, b); err != nil {
			p.logger.Warn("snapshot publish failed", "bundle_id", b.ID, "error", err)
			return
		}
		p.logger.Info("snapshot published", "bundle_id", b.ID, "topic", p.writer.Topic)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newSnapshot(b *tally.Bundle) Snapshot {
	groups := domain.GroupBySeason(b.Statewide)
	totals := make([]SeasonTotal, 0, len(groups))
	for _, s := range domain.SeasonSeriesOf(groups) {
		last := groups[s.Season][len(groups[s.Season])-1]
		totals = append(totals, SeasonTotal{
			Season:     s.Season,
			ReportDate: last.CalendarDate,
			DayOfYear:  last.DayOfYear,
			TotalAcres: last.TotalAcres,
		})
	}
	return Snapshot{
		BundleID:         b.ID,
		FetchedAt:        b.FetchedAt,
		Seasons:          b.Seasons(),
		StatewideRecords: b.Statewide.Len(),
		ZonedRecords:     b.Zoned.Len(),
		SeasonTotals:     totals,
	}
}

// serializeSnapshot marshals a Snapshot into a Kafka message.
func serializeSnapshot(s Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.BundleID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte("application/json")},
			{Key: "fetched_at", Value: []byte(s.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
