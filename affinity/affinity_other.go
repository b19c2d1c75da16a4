//go:build !linux
// +build !linux

// File: affinity/affinity_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import "errors"

var errUnsupported = errors.New("affinity: not supported on this platform")

func setAffinityPlatform(cpuID int) error { return errUnsupported }

// Allowed is unsupported off Linux.
func Allowed() ([]int, error) { return nil, errUnsupported }
