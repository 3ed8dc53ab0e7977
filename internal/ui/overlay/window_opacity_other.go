//go:build !windows

package overlay

// applyNativeOpacity is a no-op where the platform exposes no per-window
// alpha; the background fill alpha still applies.
func (overlay *Window) applyNativeOpacity(alpha uint8) {}
