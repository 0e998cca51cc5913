package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Webcam is a gocv-backed driver for development rigs without the Pi camera
// stack. It keeps the device open, pumps preview frames on a goroutine and
// serves stills from the same stream.
type Webcam struct {
	device int
	width  int
	height int

	mu        sync.Mutex
	cap       *gocv.VideoCapture
	lastFrame []byte
	stop      chan struct{}
	running   bool
}

// NewWebcam opens video device at index device.
func NewWebcam(device, width, height int) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, wrapErr("gocv", fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, device, err))
	}
	if width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Webcam{device: device, width: width, height: height, cap: cap}, nil
}

// Capture grabs one frame and writes it as JPEG to dest.
func (w *Webcam) Capture(ctx context.Context, dest string) error {
	if err := ctx.Err(); err != nil {
		return wrapErr("gocv", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return wrapErr("gocv", ErrCameraUnavailable)
	}

	img := gocv.NewMat()
	defer img.Close()
	if ok := w.cap.Read(&img); !ok || img.Empty() {
		return wrapErr("gocv", ErrNoFrame)
	}
	if ok := gocv.IMWrite(dest, img); !ok {
		return wrapErr("gocv", fmt.Errorf("imwrite %s failed", dest))
	}
	return nil
}

// StartPreview begins pumping frames for the MJPEG surface at ~15 fps.
func (w *Webcam) StartPreview() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.cap == nil {
		return nil
	}
	w.stop = make(chan struct{})
	w.running = true
	go w.pump(w.stop)
	return nil
}

// StopPreview halts the frame pump.
func (w *Webcam) StopPreview() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	close(w.stop)
	w.running = false
	return nil
}

// Frame returns the most recent preview JPEG.
func (w *Webcam) Frame() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.lastFrame) == 0 {
		return nil, ErrNoFrame
	}
	frame := make([]byte, len(w.lastFrame))
	copy(frame, w.lastFrame)
	return frame, nil
}

// Close stops the preview and releases the device.
func (w *Webcam) Close() error {
	w.StopPreview()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return nil
	}
	err := w.cap.Close()
	w.cap = nil
	return err
}

func (w *Webcam) pump(stop chan struct{}) {
	ticker := time.NewTicker(66 * time.Millisecond)
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			if w.cap == nil {
				w.mu.Unlock()
				return
			}
			ok := w.cap.Read(&img)
			if ok && !img.Empty() {
				if buf, err := gocv.IMEncode(gocv.JPEGFileExt, img); err == nil {
					w.lastFrame = append(w.lastFrame[:0], buf.GetBytes()...)
					buf.Close()
				}
			}
			w.mu.Unlock()
		}
	}
}
