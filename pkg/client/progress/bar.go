package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"mhub.dev/mhub/pkg/client/units"
)

// Bar is one row of a MultiBar. Transfer goroutines update it while the
// render loop reads it, so all fields are guarded by mu.
type Bar struct {
	mu        sync.Mutex
	name      string
	total     int64 // total bytes, 0 for indeterminate
	completed int64
	width     int
	status    string
	done      bool
	mp        *MultiBar
}

func (b *Bar) Write(w io.Writer) {
	b.mu.Lock()
	name, total, completedBytes := b.name, b.total, b.completed
	width, status, done := b.width, b.status, b.done
	b.mu.Unlock()

	if width == 0 {
		width = 40
	}
	var completed int
	if done {
		completed = width
	} else if total > 0 {
		completed = int(float64(width) * float64(completedBytes) / float64(total))
		if completed < 0 {
			completed = 0
		}
		if completed > width {
			completed = width
		}
		status = units.HumanSize(float64(completedBytes)) + "/" + units.HumanSize(float64(total))
	}

	fmt.Fprintf(w, "%s [%s%s] %s\n",
		name,
		strings.Repeat("+", completed),
		strings.Repeat("-", width-completed),
		status,
	)
}

func (b *Bar) SetProgress(completed, total int64) {
	b.mu.Lock()
	b.completed, b.total = completed, total
	b.mu.Unlock()
	b.Notify()
}

func (b *Bar) SetStatus(name, status string) {
	b.mu.Lock()
	b.name, b.status = name, status
	b.mu.Unlock()
	b.Notify()
}

func (b *Bar) finish() {
	b.mu.Lock()
	b.done = true
	b.mu.Unlock()
	b.Notify()
}

func (b *Bar) fail() {
	b.mu.Lock()
	b.status = "failed"
	b.mu.Unlock()
	b.Notify()
}

func (b *Bar) Notify() {
	if b.mp != nil {
		b.mp.haschange.Store(true)
	}
}

func (b *Bar) WrapReader(rc io.ReadCloser, name string, total int64, onProcess, onComplete, onFailed string) io.ReadCloser {
	b.mu.Lock()
	b.name, b.total, b.status = name, total, onProcess
	b.mu.Unlock()
	b.Notify()
	return &barReader{rc: rc, b: b, onComplete: onComplete, onFailed: onFailed}
}

type barReader struct {
	rc         io.ReadCloser
	b          *Bar
	onComplete string
	onFailed   string
}

func (r *barReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)

	b := r.b
	b.mu.Lock()
	b.completed += int64(n)
	if b.completed >= b.total {
		b.status = r.onComplete
		b.done = true
	}
	b.mu.Unlock()
	b.Notify()
	return n, err
}

func (r *barReader) Close() error {
	b := r.b
	b.mu.Lock()
	if b.completed < b.total {
		b.status = r.onFailed
	}
	b.mu.Unlock()
	b.Notify()
	return r.rc.Close()
}
