package presence

import (
	"errors"
	"time"
)

// ErrCapture indicates the frame source could not deliver a frame.
var ErrCapture = errors.New("frame capture failed")

// ErrClassify indicates the classifier could not process a captured frame.
var ErrClassify = errors.New("presence classification failed")

// Frame is a single raw video frame in BGR24 byte order.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	At     time.Time
}

// FrameSource delivers single frames from a camera device.
type FrameSource interface {
	CaptureFrame() (Frame, error)
}

// Classifier scores a frame for user presence on a 0-100 scale.
type Classifier interface {
	DetectConfidence(frame Frame) (float64, error)
}

// Sample is the result of one presence check.
type Sample struct {
	At         time.Time
	Confidence float64
	Present    bool
}
