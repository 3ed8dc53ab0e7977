package vision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCascadeFile is the Haar cascade used for frontal face detection.
const DefaultCascadeFile = "haarcascade_frontalface_default.xml"

// ErrCascadeNotFound indicates no face cascade file could be located.
var ErrCascadeNotFound = errors.New("face cascade file not found")

// cascadeSearchDirs are the usual OpenCV data install locations.
var cascadeSearchDirs = []string{
	"/usr/share/opencv4/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
	`C:\opencv\build\etc\haarcascades`,
}

// ResolveCascadePath locates the frontal face cascade XML. An explicit path
// wins, then the DEEPWORK_CASCADE environment variable, then the usual
// OpenCV install locations.
func ResolveCascadePath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("cascade file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if env := os.Getenv("DEEPWORK_CASCADE"); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("cascade file %s from DEEPWORK_CASCADE: %w", env, err)
		}
		return env, nil
	}

	for _, dir := range cascadeSearchDirs {
		candidate := filepath.Join(dir, DefaultCascadeFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", ErrCascadeNotFound
}
