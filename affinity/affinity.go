// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files guarded by build tags.

package affinity

import (
	"runtime"

	"github.com/momentics/meshbuf/api"
)

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpuID. The returned func releases the thread lock; the thread keeps its
// affinity until it exits.
func Pin(cpuID int) (func(), error) {
	if cpuID < 0 {
		return nil, api.ErrInvalidArgs.WithContext("cpu", cpuID)
	}
	runtime.LockOSThread()
	if err := setAffinityPlatform(cpuID); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return runtime.UnlockOSThread, nil
}
