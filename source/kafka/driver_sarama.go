package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"rowkit/internal/frame"
	"rowkit/internal/logging"
	"rowkit/internal/spec"
	"rowkit/source"
)

// SaramaDriver reads a bounded snapshot of one topic. Every message value
// must be a JSON object; its keys become columns in first-seen order.
type SaramaDriver struct {
	cfg  Config
	cons sarama.Consumer
}

// NewSaramaDriver wraps an existing consumer, e.g. sarama/mocks in tests.
func NewSaramaDriver(cfg Config, cons sarama.Consumer) *SaramaDriver {
	applyDefaults(&cfg)
	return &SaramaDriver{cfg: cfg, cons: cons}
}

func (d *SaramaDriver) Configure(raw any) error {
	var cfg Config
	switch c := raw.(type) {
	case Config:
		cfg = c
		applyDefaults(&cfg)
	case spec.SourceSpec:
		var err error
		if cfg, err = LoadConfig(c.Config); err != nil {
			return err
		}
	default:
		return fmt.Errorf("kafka-source: expected Config or SourceSpec, got %T", raw)
	}
	if cfg.Topic == "" {
		return errors.New("kafka-source: topic is required")
	}
	d.cfg = cfg

	sc, err := saramaConfig(cfg)
	if err != nil {
		return err
	}
	d.cons, err = sarama.NewConsumer(cfg.Brokers, sc)
	return err
}

func saramaConfig(cfg Config) (*sarama.Config, error) {
	ver, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	if cfg.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = cfg.SASLUser, cfg.SASLPass
	}
	return sc, nil
}

func (d *SaramaDriver) initialOffset() int64 {
	if d.cfg.StartFrom == "newest" {
		return sarama.OffsetNewest
	}
	return sarama.OffsetOldest
}

func (d *SaramaDriver) Load(ctx context.Context) (*frame.Dataset, error) {
	if d.cons == nil {
		return nil, errors.New("kafka-source: not configured")
	}
	parts := d.cfg.Partitions
	if len(parts) == 0 {
		var err error
		if parts, err = d.cons.Partitions(d.cfg.Topic); err != nil {
			return nil, fmt.Errorf("kafka-source: partitions of %s: %w", d.cfg.Topic, err)
		}
	}

	b := frame.NewBuilder()
	for _, p := range parts {
		if d.cfg.MaxMessages > 0 && int64(b.Len()) >= d.cfg.MaxMessages {
			break
		}
		if err := d.readPartition(ctx, p, b); err != nil {
			return nil, err
		}
	}
	logging.L().Info("kafka-source: snapshot loaded",
		"topic", d.cfg.Topic, "partitions", len(parts), "rows", b.Len())
	return b.Build(), nil
}

// readPartition drains one partition until it has caught up with the
// high-water mark, the message budget is spent, or nothing arrives for
// IdleTimeout.
func (d *SaramaDriver) readPartition(ctx context.Context, p int32, b *frame.Builder) error {
	pc, err := d.cons.ConsumePartition(d.cfg.Topic, p, d.initialOffset())
	if err != nil {
		return fmt.Errorf("kafka-source: consume %s/%d: %w", d.cfg.Topic, p, err)
	}
	defer pc.AsyncClose()

	idle := time.NewTimer(d.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-idle.C:
			logging.L().Debug("kafka-source: partition idle", "partition", p)
			return nil

		case cerr, ok := <-pc.Errors():
			if !ok {
				return nil
			}
			return fmt.Errorf("kafka-source: %s/%d: %w", d.cfg.Topic, p, cerr.Err)

		case msg, ok := <-pc.Messages():
			if !ok {
				return nil
			}
			rec, err := frame.ParseObject(msg.Value)
			if err != nil {
				return fmt.Errorf("kafka-source: %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
			}
			b.Append(rec)

			if d.cfg.MaxMessages > 0 && int64(b.Len()) >= d.cfg.MaxMessages {
				return nil
			}
			if msg.Offset+1 >= pc.HighWaterMarkOffset() {
				return nil
			}
			idle.Reset(d.cfg.IdleTimeout)
		}
	}
}

func (d *SaramaDriver) Close() error {
	if d.cons == nil {
		return nil
	}
	err := d.cons.Close()
	d.cons = nil
	return err
}

func init() { source.Register("kafka", func() source.Adapter { return &SaramaDriver{} }) }
