package capture

import (
	"context"
	"os"
	"sync"
)

// Mock is a scriptable Camera for tests and for running the daemon without
// hardware. Queue errors with FailNext; captures write a tiny placeholder
// JPEG so downstream code has a real file to open.
type Mock struct {
	mu        sync.Mutex
	failQueue []error
	captures  []string
	preview   bool
	frame     []byte
}

// NewMock returns a camera that always succeeds until told otherwise.
func NewMock() *Mock {
	return &Mock{frame: placeholderJPEG()}
}

// FailNext queues errors returned by upcoming Capture calls, in order.
func (m *Mock) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failQueue = append(m.failQueue, errs...)
}

// Captures returns the destinations written so far.
func (m *Mock) Captures() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.captures))
	copy(out, m.captures)
	return out
}

// PreviewRunning reports the preview state.
func (m *Mock) PreviewRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preview
}

// Capture pops a queued failure or writes the placeholder to dest.
func (m *Mock) Capture(ctx context.Context, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.failQueue) > 0 {
		err := m.failQueue[0]
		m.failQueue = m.failQueue[1:]
		return err
	}
	if err := os.WriteFile(dest, placeholderJPEG(), 0o644); err != nil {
		return err
	}
	m.captures = append(m.captures, dest)
	return nil
}

// StartPreview marks the preview running.
func (m *Mock) StartPreview() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preview = true
	return nil
}

// StopPreview marks the preview stopped.
func (m *Mock) StopPreview() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preview = false
	return nil
}

// Frame returns a static placeholder frame.
func (m *Mock) Frame() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.preview {
		return nil, ErrNoFrame
	}
	return m.frame, nil
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// placeholderJPEG is a minimal valid JPEG marker pair; enough for code that
// only moves bytes around. Tests that decode pixels use real images instead.
func placeholderJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}
}
