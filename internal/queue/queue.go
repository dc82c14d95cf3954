// Package queue publishes audio-intake markers to Kafka. Markers exist for
// operational visibility only; losing one never affects a session.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"interviewd/internal/logging"
)

// Marker records that one audio blob entered the pipeline.
type Marker struct {
	SessionID string    `json:"session_id"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// Publisher writes markers to a Kafka topic. With Enabled false (or no
// brokers) it runs in log-only mode and every publish succeeds trivially.
type Publisher struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	enabled bool
	log     zerolog.Logger
}

func New(cfg Config) *Publisher {
	log := logging.WithComponent("queue")

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("audio intake queue disabled, markers are log-only")
		return &Publisher{topic: cfg.Topic, log: log}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("audio intake queue initialized")

	return &Publisher{
		writer:  writer,
		brokers: cfg.Brokers,
		topic:   cfg.Topic,
		enabled: true,
		log:     log,
	}
}

// Ping dials the first broker to verify the queue dependency at boot. The
// process must fail fast on an unreachable broker rather than run degraded.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	conn, err := dialer.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka broker %s: %w", p.brokers[0], err)
	}
	return conn.Close()
}

// PublishMarker emits one intake marker keyed by session id.
func (p *Publisher) PublishMarker(ctx context.Context, sessionID string, sizeBytes int) error {
	marker := Marker{SessionID: sessionID, SizeBytes: sizeBytes, CreatedAt: time.Now().UTC()}

	payload, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal audio marker: %w", err)
	}

	p.log.Debug().Str("sessionId", sessionID).Int("sizeBytes", sizeBytes).Msg("audio intake marker")

	if !p.enabled {
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audio marker: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
