package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
	"rowkit/sink"
)

// driver publishes one JSON object per row.
type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

// New wraps an existing producer, e.g. sarama/mocks in tests.
func New(cfg Config, p sarama.SyncProducer) sink.Adapter {
	applyDefaults(&cfg)
	return &driver{cfg: cfg, p: p}
}

func (d *driver) Configure(c any) error {
	var cfg Config
	switch v := c.(type) {
	case Config:
		cfg = v
		applyDefaults(&cfg)
	case spec.SinkSpec:
		var err error
		if cfg, err = LoadConfig(v.Config); err != nil {
			return err
		}
	default:
		return fmt.Errorf("kafka-sink: want Config or SinkSpec, got %T", c)
	}
	if cfg.Topic == "" {
		return errors.New("kafka-sink: topic is required")
	}
	d.cfg = cfg

	ver, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	if cfg.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = cfg.SASLUser, cfg.SASLPass
	}
	d.p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
	return err
}

func (d *driver) Write(ctx context.Context, ds *frame.Dataset) error {
	if d.p == nil {
		return errors.New("kafka-sink: not configured")
	}
	keyCol := -1
	if d.cfg.KeyColumn != "" {
		for i, c := range ds.Columns() {
			if c == d.cfg.KeyColumn {
				keyCol = i
			}
		}
		if keyCol < 0 {
			return fmt.Errorf("kafka-sink: key column %q: %w", d.cfg.KeyColumn, frame.ErrNoColumn)
		}
	}

	batch := make([]*sarama.ProducerMessage, 0, min(d.cfg.BatchSize, ds.Len()))
	for i := 0; i < ds.Len(); i++ {
		val, err := ds.MarshalRow(i)
		if err != nil {
			return fmt.Errorf("kafka-sink: row %d: %w", i, err)
		}
		msg := &sarama.ProducerMessage{Topic: d.cfg.Topic, Value: sarama.ByteEncoder(val)}
		if keyCol >= 0 {
			msg.Key = sarama.StringEncoder(frame.Format(ds.Value(i, keyCol)))
		}
		batch = append(batch, msg)
		if len(batch) == d.cfg.BatchSize {
			if err := d.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return d.flush(ctx, batch)
}

func (d *driver) flush(ctx context.Context, batch []*sarama.ProducerMessage) error {
	if len(batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.p.SendMessages(batch); err != nil {
		return fmt.Errorf("kafka-sink: send to %s: %w", d.cfg.Topic, err)
	}
	return nil
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
