//go:build linux
// +build linux

// File: pool/arena_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux arena backed by an anonymous private mapping, kept outside the Go heap.

package pool

import "golang.org/x/sys/unix"

func allocArena(size int) ([]byte, func() error, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return b, func() error { return unix.Munmap(b) }, nil
}
