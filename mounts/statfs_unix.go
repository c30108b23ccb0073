//go:build linux || darwin || freebsd

package mounts

import "golang.org/x/sys/unix"

// Statfs reports the usage of the filesystem mounted at path.
func Statfs(path string) (Usage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Usage{}, err
	}
	return Usage{
		BlockSize: int64(st.Bsize),
		Blocks:    int64(st.Blocks),
		Available: int64(st.Bavail),
	}, nil
}
