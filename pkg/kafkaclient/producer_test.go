package kafkaclient

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type mockWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (mw *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if mw.err != nil {
		return mw.err
	}
	mw.written = append(mw.written, msgs...)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.closed = true
	return nil
}

func TestKafkaProducer_Send(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaProducerWithWriter(w)

	msgs := []kafka.Message{
		{Key: []byte("u33dc"), Value: []byte(`{"lat":52.5}`)},
		{Key: []byte("u33db"), Value: []byte(`{"lat":52.4}`)},
	}
	if err := p.Send(context.Background(), msgs...); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if len(w.written) != 2 {
		t.Fatalf("expected 2 written messages, got %d", len(w.written))
	}
	if string(w.written[0].Key) != "u33dc" {
		t.Errorf("unexpected key %q", w.written[0].Key)
	}

	p.Close()
	if !w.closed {
		t.Error("expected writer to be closed")
	}
}

func TestKafkaProducer_SendEmpty(t *testing.T) {
	w := &mockWriter{err: errors.New("must not be called")}
	p := NewKafkaProducerWithWriter(w)
	if err := p.Send(context.Background()); err != nil {
		t.Fatalf("Send() with no messages failed: %v", err)
	}
}

func TestKafkaProducer_SendError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaProducerWithWriter(&mockWriter{err: boom})
	err := p.Send(context.Background(), kafka.Message{Value: []byte("x")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestNewKafkaProducer_Validation(t *testing.T) {
	if _, err := NewKafkaProducer(nil, "locations"); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewKafkaProducer([]string{"localhost:9092"}, ""); err == nil {
		t.Error("expected error without topic")
	}
}
