//go:build !linux && !darwin && !freebsd

package mounts

import (
	"errors"
	"runtime"
)

// Statfs is not available on this platform.
func Statfs(string) (Usage, error) {
	return Usage{}, errors.New("mounts: statfs not supported on " + runtime.GOOS)
}
