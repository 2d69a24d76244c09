package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"geosampler/internal/models"
)

// mockMessageIterator replays a fixed set of messages and records commits.
type mockMessageIterator struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func newMockMessageIterator(values ...string) *mockMessageIterator {
	ch := make(chan kafka.Message, len(values))
	for i, v := range values {
		ch <- kafka.Message{Topic: "sample-requests", Offset: int64(i), Value: []byte(v)}
	}
	close(ch)
	return &mockMessageIterator{ch: ch}
}

func (m *mockMessageIterator) Messages() <-chan kafka.Message { return m.ch }

func (m *mockMessageIterator) CommitOffset(_ context.Context, msg kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msg.Offset)
	return nil
}

func (m *mockMessageIterator) commits() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.committed...)
}

func TestIterator_DecodesAndCommits(t *testing.T) {
	src := newMockMessageIterator(
		`{"id":"r1","radius_km":5}`,
		`not json`,
		`{"id":"r2","territories":["de"]}`,
	)
	it := NewIterator(src, DecodeJSON[models.SampleRequest])

	var got []models.SampleRequest
	for f := range it.Objects(context.Background()) {
		got = append(got, f.Data)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 decoded requests, got %d", len(got))
	}
	if got[0].ID != "r1" || got[0].RadiusKm != 5 {
		t.Errorf("unexpected first request %+v", got[0])
	}
	if got[1].ID != "r2" || len(got[1].Territories) != 1 || got[1].Territories[0] != "de" {
		t.Errorf("unexpected second request %+v", got[1])
	}

	commits := src.commits()
	if len(commits) != 3 {
		t.Fatalf("expected every message to be committed, got %v", commits)
	}
	for i, off := range commits {
		if off != int64(i) {
			t.Errorf("commit %d has offset %d", i, off)
		}
	}
}

func TestIterator_CancelStopsBeforeCommit(t *testing.T) {
	src := newMockMessageIterator(`{"id":"r1"}`, `{"id":"r2"}`)
	it := NewIterator(src, DecodeJSON[models.SampleRequest])

	ctx, cancel := context.WithCancel(context.Background())
	ch := it.Objects(ctx)
	cancel()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancellation")
	}
	for range ch {
	}
	if n := len(src.commits()); n > 1 {
		t.Errorf("expected at most one commit after cancellation, got %d", n)
	}
}
