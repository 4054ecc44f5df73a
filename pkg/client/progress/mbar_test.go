package progress

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncWriter lets the render loop and the test share a buffer safely.
type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestMultiBarConcurrentTransfers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncWriter{}
	mb := NewMultiBar(out, 40, 4)
	go mb.Run(ctx)

	const payload = 16 * 1024
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("blob-%d", i)
		mb.Go(name, "pending", func(b *Bar) error {
			b.SetStatus(name, "digesting")
			src := b.WrapReader(
				io.NopCloser(strings.NewReader(strings.Repeat("x", payload))),
				name, payload, "pushing", "done", "failed",
			)
			defer src.Close()
			_, err := io.Copy(io.Discard, src)
			return err
		})
	}
	if err := mb.Wait(); err != nil {
		t.Fatal(err)
	}
	// let the render loop pick up the final state
	time.Sleep(150 * time.Millisecond)
	cancel()

	mb.barslock.Lock()
	defer mb.barslock.Unlock()
	if len(mb.bars) != 8 {
		t.Fatalf("bars = %d, want 8", len(mb.bars))
	}
	for _, b := range mb.bars {
		b.mu.Lock()
		name, done, status, completed := b.name, b.done, b.status, b.completed
		b.mu.Unlock()
		if !done || status != "done" {
			t.Errorf("bar %s: done = %v, status = %q, want done", name, done, status)
		}
		if completed != payload {
			t.Errorf("bar %s: completed = %d, want %d", name, completed, payload)
		}
	}
	if out.String() == "" {
		t.Error("render loop wrote no output")
	}
}

func TestBarWrite(t *testing.T) {
	tests := []struct {
		name string
		bar  *Bar
		want string
	}{
		{
			name: "pending",
			bar:  &Bar{name: "blob", status: "pending", width: 4},
			want: "blob [----] pending\n",
		},
		{
			name: "half complete",
			bar:  &Bar{name: "blob", width: 4, completed: 512, total: 1024},
			want: "blob [++--] 512B/1.02kB\n",
		},
		{
			name: "done",
			bar:  &Bar{name: "blob", status: "done", done: true, width: 4},
			want: "blob [++++] done\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.bar.Write(buf)
			if got := buf.String(); got != tt.want {
				t.Errorf("Write() = %q, want %q", got, tt.want)
			}
		})
	}
}
