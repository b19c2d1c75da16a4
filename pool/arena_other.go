//go:build !linux
// +build !linux

// File: pool/arena_other.go
// Author: momentics <momentics@gmail.com>

package pool

func allocArena(size int) ([]byte, func() error, error) {
	return make([]byte, size), nil, nil
}
