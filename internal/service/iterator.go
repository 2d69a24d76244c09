// Package service wires the quadtree engine to its callers. It holds the
// location iterator that turns a coverage map into sample circles, the
// generic Iterator that decodes sample requests from a message source, and
// the Sampler that answers those requests.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// Iterator consumes messages from a MessageIterator, decodes each one with
// a DecodeFunc and yields the results on a channel. It is generic over the
// decoded type T.
//
// The Iterator does not manage the lifecycle of the underlying message
// source; callers start and stop their consumer outside.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
	}
}

// Objects starts a goroutine that decodes every received message, emits it
// on the returned channel and commits its offset once the receiver has
// taken it. Messages that fail to decode are logged, committed and skipped
// so a poison message cannot block the partition. The channel is closed
// when the message source is exhausted or ctx is cancelled.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *Fetched[T] {
	out := make(chan *Fetched[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			data, err := it.decode(ctx, msg)
			if err != nil {
				log.Printf("Skipping undecodable message at offset %d: %v", msg.Offset, err)
				it.commit(ctx, msg)
				continue
			}

			select {
			case out <- &Fetched[T]{Data: data, Message: msg}:
			case <-ctx.Done():
				return
			}
			it.commit(ctx, msg)
		}
	}()
	return out
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		log.Printf("Failed to commit offset: %v", err)
	}
}

// DecodeJSON is a DecodeFunc for JSON message values.
func DecodeJSON[T any](_ context.Context, msg kafka.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Value, &v); err != nil {
		return v, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return v, nil
}
