/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	applog "novelbox/internal/log"
)

// Writer records pages asynchronously. RecordPage never blocks: when the
// bounded queue is full the page is dropped and counted.
type Writer struct {
	b       *Backlog
	log     *slog.Logger
	q       chan Entry
	pending atomic.Int64
	dropped atomic.Int64

	// mu orders enqueues against Close so nothing lands after the drain.
	mu       sync.Mutex
	isClosed bool
	closed   chan struct{}
	done     chan struct{}
}

// NewWriter starts the background writer. size <= 0 selects 64.
func NewWriter(b *Backlog, size int) *Writer {
	if size <= 0 {
		size = 64
	}
	w := &Writer{
		b:      b,
		log:    applog.WithComponent("backlog"),
		q:      make(chan Entry, size),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// RecordPage queues a page.
func (w *Writer) RecordPage(box, ref, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		w.dropped.Add(1)
		return
	}
	w.pending.Add(1)
	select {
	case w.q <- Entry{Box: box, Ref: ref, Text: text, At: time.Now()}:
	default:
		w.pending.Add(-1)
		w.dropped.Add(1)
	}
}

// Dropped counts pages lost to a full queue or a closed writer.
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Flush waits until every queued page is written or ctx ends.
func (w *Writer) Flush(ctx context.Context) error {
	for w.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

// Close writes what is queued and stops the background goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.isClosed {
		w.isClosed = true
		close(w.closed)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.closed:
			for {
				select {
				case e := <-w.q:
					w.write(e)
				default:
					return
				}
			}
		case e := <-w.q:
			w.write(e)
		}
	}
}

func (w *Writer) write(e Entry) {
	defer w.pending.Add(-1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := w.b.Append(ctx, e); err != nil {
		w.log.Warn("backlog write failed", slog.String("box", e.Box), slog.Any("err", err))
	}
}
