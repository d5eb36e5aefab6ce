package net

import (
	"errors"
	"testing"

	"github.com/mosaicnetworks/naivechain/src/common"
)

// blockedFrames never completes a read or a write.
type blockedFrames struct {
	closed chan struct{}
}

func (b *blockedFrames) ReadFrame() ([]byte, error) {
	<-b.closed
	return nil, errors.New("closed")
}

func (b *blockedFrames) WriteFrame([]byte) error {
	<-b.closed
	return errors.New("closed")
}

func (b *blockedFrames) RemoteAddr() string { return "blocked" }

func (b *blockedFrames) Close() error {
	close(b.closed)
	return nil
}

func TestConnSendQueueFull(t *testing.T) {
	frames := &blockedFrames{closed: make(chan struct{})}
	conn := newNetConn(frames, 2, common.NewTestEntry(t, common.TestLogLevel))

	// Nothing drains the queue.
	for i := 0; i < 2; i++ {
		if err := conn.Send(QueryLatest{}); err != nil {
			t.Fatalf("err: %v", err)
		}
	}

	if err := conn.Send(QueryLatest{}); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestConnCloseIdempotent(t *testing.T) {
	frames := &blockedFrames{closed: make(chan struct{})}
	conn := newNetConn(frames, 2, common.NewTestEntry(t, common.TestLogLevel))

	if conn.ID() == "" {
		t.Fatal("connection should have an ID")
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("err: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if err := conn.Send(QueryAll{}); err != ErrConnClosed {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
}
