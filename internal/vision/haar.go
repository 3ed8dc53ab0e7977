package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"deepwork/internal/core/presence"
)

// Haar detection parameters for frontal faces.
const (
	haarScaleFactor  = 1.1
	haarMinNeighbors = 5
	haarMinSize      = 30
)

// FaceClassifier scores frames for user presence with a Haar cascade.
// The confidence is the area of the largest detected face relative to the
// frame area, scaled so a face filling a tenth of the frame maps to 100.
type FaceClassifier struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	closed     bool
}

// LoadFaceClassifier loads the frontal face cascade from the given file.
func LoadFaceClassifier(cascadePath string) (*FaceClassifier, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("load face cascade %s failed", cascadePath)
	}
	return &FaceClassifier{classifier: classifier}, nil
}

// DetectConfidence runs face detection on one frame and returns a 0-100
// presence confidence.
func (faces *FaceClassifier) DetectConfidence(frame presence.Frame) (float64, error) {
	faces.mu.Lock()
	defer faces.mu.Unlock()

	if faces.closed {
		return 0, fmt.Errorf("%w: classifier is closed", presence.ErrClassify)
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return 0, fmt.Errorf("%w: decode %dx%d frame: %v", presence.ErrClassify, frame.Width, frame.Height, err)
	}
	defer mat.Close()
	if mat.Empty() {
		return 0, fmt.Errorf("%w: empty %dx%d frame", presence.ErrClassify, frame.Width, frame.Height)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	rects := faces.classifier.DetectMultiScaleWithParams(
		gray,
		haarScaleFactor,
		haarMinNeighbors,
		0,
		image.Pt(haarMinSize, haarMinSize),
		image.Point{},
	)
	return confidenceFromRects(rects, frame.Width, frame.Height), nil
}

// Close releases the cascade.
func (faces *FaceClassifier) Close() error {
	faces.mu.Lock()
	defer faces.mu.Unlock()

	if faces.closed {
		return nil
	}
	faces.closed = true
	return faces.classifier.Close()
}

// confidenceFromRects maps detected face rectangles to a 0-100 confidence.
// Only the largest face counts.
func confidenceFromRects(rects []image.Rectangle, width, height int) float64 {
	if len(rects) == 0 || width <= 0 || height <= 0 {
		return 0
	}

	largest := 0
	for _, rect := range rects {
		if area := rect.Dx() * rect.Dy(); area > largest {
			largest = area
		}
	}

	confidence := float64(largest) / float64(width*height) * 1000
	if confidence > 100 {
		return 100
	}
	return confidence
}
