// Package storage provides the byte sinks the expense data is persisted to.
//
// A sink stores one opaque document. Every Write fully replaces the previous
// content, so a reader never observes a partial or interleaved document.
package storage

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// ErrNotFound is returned by Read when the sink holds no document yet.
var ErrNotFound = errors.New("no stored data")

// Sink reads and writes a single document.
type Sink interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// SerializedSink gates a sink so that at most one Read or Write runs at a
// time against the same destination.
type SerializedSink struct {
	sink Sink
	sem  *semaphore.Weighted
}

// Serialize wraps sink. Wrapping an already serialized sink returns it as is.
func Serialize(sink Sink) *SerializedSink {
	if s, ok := sink.(*SerializedSink); ok {
		return s
	}
	return &SerializedSink{sink: sink, sem: semaphore.NewWeighted(1)}
}

func (s *SerializedSink) Read(ctx context.Context) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for sink: %w", err)
	}
	defer s.sem.Release(1)
	return s.sink.Read(ctx)
}

func (s *SerializedSink) Write(ctx context.Context, data []byte) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for sink: %w", err)
	}
	defer s.sem.Release(1)
	return s.sink.Write(ctx, data)
}

// Unwrap returns the gated sink.
func (s *SerializedSink) Unwrap() Sink {
	return s.sink
}
