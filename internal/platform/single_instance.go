package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// SessionLock keeps a second instance from grabbing the webcam while a
// session is in flight. It holds a deterministic localhost port for the
// lifetime of the process; the OS releases it even on a crash.
type SessionLock struct {
	listener net.Listener
	address  string
}

// AcquireSessionLock binds the application's lock port. A bind failure
// means another instance holds it.
func AcquireSessionLock(appName string) (*SessionLock, error) {
	address := fmt.Sprintf("127.0.0.1:%d", lockPort(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, address)
	}
	return &SessionLock{listener: listener, address: address}, nil
}

// Release frees the lock.
func (lock *SessionLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	return lock.listener.Close()
}

// Address returns the bound lock address.
func (lock *SessionLock) Address() string {
	if lock == nil {
		return ""
	}
	return lock.address
}

// lockPort derives a stable port in the dynamic range from the app name.
func lockPort(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
