package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"rowkit/internal/frame"
)

func orders(t *testing.T) *frame.Dataset {
	t.Helper()
	ds, err := frame.New([]string{"id", "total"}, [][]any{{"a", "b", "c"}, {int64(20), 15.5, nil}})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return ds
}

func expectValue(want string) mocks.ValueChecker {
	return func(val []byte) error {
		if string(val) != want {
			return fmt.Errorf("want %s, got %s", want, val)
		}
		return nil
	}
}

func TestDriver_PublishesOneJSONObjectPerRow(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(expectValue(`{"id":"a","total":20}`))
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(expectValue(`{"id":"b","total":15.5}`))
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(expectValue(`{"id":"c","total":null}`))

	d := New(Config{Topic: "enriched", BatchSize: 2}, p)
	if err := d.Write(context.Background(), orders(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDriver_KeyColumn(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	for _, want := range []string{"a", "b", "c"} {
		want := want
		p.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
			k, err := m.Key.Encode()
			if err != nil {
				return err
			}
			if string(k) != want {
				return fmt.Errorf("want key %s, got %s", want, k)
			}
			return nil
		})
	}
	d := New(Config{Topic: "enriched", KeyColumn: "id"}, p)
	defer d.Close()
	if err := d.Write(context.Background(), orders(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestDriver_UnknownKeyColumn(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	d := New(Config{Topic: "enriched", KeyColumn: "nope"}, p)
	defer d.Close()
	err := d.Write(context.Background(), orders(t))
	if !errors.Is(err, frame.ErrNoColumn) {
		t.Fatalf("want ErrNoColumn, got %v", err)
	}
}

func TestDriver_SendFailure(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p.ExpectSendMessageAndSucceed()
	p.ExpectSendMessageAndSucceed()

	d := New(Config{Topic: "enriched"}, p)
	defer d.Close()
	if err := d.Write(context.Background(), orders(t)); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("want ErrOutOfBrokers, got %v", err)
	}
}
