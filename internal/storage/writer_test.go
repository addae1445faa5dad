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
	"sync"
	"testing"
	"time"
)

func TestWriterRecordsAsync(t *testing.T) {
	b := openTemp(t)
	w := NewWriter(b, 8)
	w.RecordPage("main", "a.md", "one")
	w.RecordPage("main", "a.md", "two")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	w.Close()
	got, err := b.List(context.Background(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Text != "two" {
		t.Fatalf("pages = %+v", got)
	}
	if w.Dropped() != 0 {
		t.Fatalf("dropped = %d", w.Dropped())
	}
}

func TestWriterDropsAfterClose(t *testing.T) {
	b := openTemp(t)
	w := NewWriter(b, 1)
	w.Close()
	w.Close()
	w.RecordPage("main", "a.md", "late")
	if w.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", w.Dropped())
	}
	if n, _ := b.Count(context.Background()); n != 0 {
		t.Fatalf("count = %d", n)
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	b := openTemp(t)
	w := NewWriter(b, 16)
	for i := 0; i < 5; i++ {
		w.RecordPage("main", "a.md", "p")
	}
	w.Close()
	if n, _ := b.Count(context.Background()); n+int(w.Dropped()) != 5 {
		t.Fatalf("written %d + dropped %d != 5", n, w.Dropped())
	}
}

func TestCloseRacingRecordLosesNothing(t *testing.T) {
	b := openTemp(t)
	w := NewWriter(b, 256)
	const total = 200
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < total/4; j++ {
				w.RecordPage("main", "a.md", "p")
			}
		}()
	}
	time.Sleep(time.Millisecond)
	w.Close()
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush after Close: %v", err)
	}
	if p := w.pending.Load(); p != 0 {
		t.Fatalf("pending = %d after Close", p)
	}
	n, err := b.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n+int(w.Dropped()) != total {
		t.Fatalf("written %d + dropped %d != %d", n, w.Dropped(), total)
	}
}
