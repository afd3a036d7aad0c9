// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: capture/recorder.go
// Summary: Per-session recorder. Writes are stamped with the offset
//          from session start and batched into transactions by a
//          background goroutine.
// Usage: Obtained from Store.Begin, used as an io.WriteCloser tee.

package capture

import (
	"fmt"
	"sync"
	"time"
)

// chunkEntry is one queued write.
type chunkEntry struct {
	seq    int64
	offset time.Duration
	data   []byte
}

// Recorder captures one session's byte stream. It implements
// io.WriteCloser so it can sit behind an io.MultiWriter on a pty.
type Recorder struct {
	store   *Store
	id      int64
	started time.Time

	mu      sync.Mutex
	nextSeq int64
	closed  bool

	batchChan chan chunkEntry
	stopCh    chan struct{}
	doneCh    chan struct{}
	flushCh   chan chan struct{}
}

// Begin creates a session row and starts a recorder for it.
func (s *Store) Begin(meta SessionMeta) (*Recorder, error) {
	started := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO sessions (title, protocol, width, height, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, meta.Title, meta.Protocol, meta.Width, meta.Height, started.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("capture: begin session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("capture: begin session: %w", err)
	}

	r := &Recorder{
		store:     s,
		id:        id,
		started:   started,
		batchChan: make(chan chunkEntry, s.config.ChannelBuffer),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		flushCh:   make(chan chan struct{}),
	}
	go r.batchWriter()
	return r, nil
}

// SessionID returns the id the recorder writes under.
func (r *Recorder) SessionID() int64 {
	return r.id
}

// Write queues p for storage. The slice is copied, so callers may
// reuse their buffer. Write never blocks the byte path: when the
// queue is full the chunk is dropped and counted against the store
// logger.
func (r *Recorder) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, fmt.Errorf("capture: recorder closed")
	}
	seq := r.nextSeq
	r.nextSeq++
	r.mu.Unlock()

	entry := chunkEntry{
		seq:    seq,
		offset: time.Since(r.started),
		data:   append([]byte(nil), p...),
	}
	select {
	case r.batchChan <- entry:
	default:
		r.store.log.Warn().Int64("session", r.id).Int64("seq", seq).
			Msg("capture queue full, chunk dropped")
	}
	return len(p), nil
}

// Flush blocks until every queued chunk is stored.
func (r *Recorder) Flush() error {
	done := make(chan struct{})
	select {
	case r.flushCh <- done:
		<-done
	case <-r.stopCh:
	}
	return nil
}

// Close flushes pending chunks, stops the writer goroutine and stamps
// the session's closed_at. The store stays open.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh

	_, err := r.store.db.Exec(
		"UPDATE sessions SET closed_at = ? WHERE id = ?",
		time.Now().UnixNano(), r.id)
	if err != nil {
		return fmt.Errorf("capture: close session: %w", err)
	}
	return nil
}

// batchWriter accumulates chunks and flushes them periodically, on
// size, on demand and on shutdown.
func (r *Recorder) batchWriter() {
	defer close(r.doneCh)

	cfg := r.store.config
	batch := make([]chunkEntry, 0, cfg.BatchSize)
	timer := time.NewTimer(cfg.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		r.flushBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-r.batchChan:
			batch = append(batch, entry)
			if len(batch) >= cfg.BatchSize {
				flush()
				timer.Reset(cfg.BatchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(cfg.BatchTimeout)

		case done := <-r.flushCh:
			draining := true
			for draining {
				select {
				case entry := <-r.batchChan:
					batch = append(batch, entry)
				default:
					draining = false
				}
			}
			flush()
			close(done)

		case <-r.stopCh:
			for {
				select {
				case entry := <-r.batchChan:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

// flushBatch stores a batch in a single transaction.
func (r *Recorder) flushBatch(batch []chunkEntry) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error().Err(err).Msg("capture batch begin failed")
		return
	}
	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO chunks (session_id, seq, offset_ns, data) VALUES (?, ?, ?, ?)")
	if err != nil {
		s.log.Error().Err(err).Msg("capture batch prepare failed")
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(r.id, e.seq, int64(e.offset), e.data); err != nil {
			s.log.Error().Err(err).Int64("seq", e.seq).Msg("capture chunk insert failed")
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		s.log.Error().Err(err).Msg("capture batch commit failed")
	}
}
