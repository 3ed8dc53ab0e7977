package vision

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"deepwork/internal/core/presence"
)

// Webcam captures frames from a local camera device through OpenCV.
type Webcam struct {
	mu      sync.Mutex
	device  int
	capture *gocv.VideoCapture
	buffer  gocv.Mat
	closed  bool
}

// OpenWebcam opens the camera device. It fails immediately when the device
// cannot be opened so the caller can refuse to start a session without a
// working camera.
func OpenWebcam(device int) (*Webcam, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera device %d: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera device %d is not available", device)
	}

	return &Webcam{
		device:  device,
		capture: capture,
		buffer:  gocv.NewMat(),
	}, nil
}

// CaptureFrame reads one frame from the camera as BGR24 bytes.
func (cam *Webcam) CaptureFrame() (presence.Frame, error) {
	cam.mu.Lock()
	defer cam.mu.Unlock()

	if cam.closed {
		return presence.Frame{}, fmt.Errorf("%w: camera device %d is closed", presence.ErrCapture, cam.device)
	}
	if !cam.capture.Read(&cam.buffer) {
		return presence.Frame{}, fmt.Errorf("%w: camera device %d returned no frame", presence.ErrCapture, cam.device)
	}
	if cam.buffer.Empty() {
		return presence.Frame{}, fmt.Errorf("%w: camera device %d returned an empty frame", presence.ErrCapture, cam.device)
	}

	data := cam.buffer.ToBytes()

	return presence.Frame{
		Data:   data,
		Width:  cam.buffer.Cols(),
		Height: cam.buffer.Rows(),
		At:     time.Now(),
	}, nil
}

// Close releases the camera device.
func (cam *Webcam) Close() error {
	cam.mu.Lock()
	defer cam.mu.Unlock()

	if cam.closed {
		return nil
	}
	cam.closed = true

	if err := cam.buffer.Close(); err != nil {
		cam.capture.Close()
		return err
	}
	return cam.capture.Close()
}
