//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2/driver"
)

// Win32 layered-window bits for per-window alpha.
const (
	wsExLayered = 0x00080000
	lwaAlpha    = 0x2
)

// GWL_EXSTYLE is negative; it has to pass through int32 so the sign-extended
// bit pattern survives the uintptr conversion.
var gwlExStyle int32 = -20

var (
	user32                         = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW          = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
)

// applyNativeOpacity makes the whole overlay card translucent, not just the
// background fill. Only Windows exposes per-window alpha.
func (overlay *Window) applyNativeOpacity(alpha uint8) {
	nativeWindow, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		hwnd := windowsHandle(context)
		if hwnd == 0 {
			return
		}

		index := uintptr(uint32(gwlExStyle))
		style, _, _ := procGetWindowLongPtrW.Call(hwnd, index)
		if style&wsExLayered == 0 {
			procSetWindowLongPtrW.Call(hwnd, index, style|wsExLayered)
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), lwaAlpha)
	})
}

func windowsHandle(context any) uintptr {
	switch value := context.(type) {
	case driver.WindowsWindowContext:
		return value.HWND
	case *driver.WindowsWindowContext:
		return value.HWND
	default:
		return 0
	}
}
