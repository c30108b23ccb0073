// Package mounts derives supplementary application sizes from the mount table.
//
// Applications installed on external storage are mounted as one container per
// application under a common prefix. The used space of each container is the
// application's external footprint.
package mounts

import (
	"bufio"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultPath is the mount table read by Load when no path is given.
	DefaultPath = "/proc/mounts"
	// DefaultPrefix selects the mount points of application containers.
	DefaultPrefix = "/mnt/asec/"
)

// Usage is the block accounting of a mounted filesystem.
type Usage struct {
	BlockSize int64
	Blocks    int64
	Available int64
}

// Used returns the number of bytes in use.
func (u Usage) Used() int64 {
	used := (u.Blocks - u.Available) * u.BlockSize
	if used < 0 {
		return 0
	}
	return used
}

// StatFunc reports the usage of the filesystem mounted at path.
type StatFunc func(path string) (Usage, error)

type loader struct {
	prefix string
	stat   StatFunc
	logger *zap.Logger
}

// Option configures Load and Parse.
type Option func(*loader)

// WithPrefix sets the mount point prefix of application containers.
func WithPrefix(prefix string) Option {
	return func(l *loader) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithStatFunc replaces the filesystem statistics call.
func WithStatFunc(fn StatFunc) Option {
	return func(l *loader) {
		if fn != nil {
			l.stat = fn
		}
	}
}

// WithLogger sets the logger used to report skipped entries.
func WithLogger(logger *zap.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func newLoader(opts []Option) *loader {
	l := &loader{prefix: DefaultPrefix, stat: Statfs, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads the mount table at path (DefaultPath if empty) and returns the used
// size of every application container, keyed by application key.
//
// Load never fails: an unreadable table is logged and yields an empty map, and
// entries that cannot be inspected are logged and left out.
func Load(path string, opts ...Option) map[string]int64 {
	l := newLoader(opts)
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn("mount table unavailable", zap.String("path", path), zap.Error(err))
		return map[string]int64{}
	}
	defer f.Close()

	return l.parse(f)
}

// Parse is Load for an already opened mount table.
func Parse(r io.Reader, opts ...Option) map[string]int64 {
	return newLoader(opts).parse(r)
}

func (l *loader) parse(r io.Reader) map[string]int64 {
	sizes := make(map[string]int64)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if fsType == "tmpfs" || !strings.HasPrefix(mountPoint, l.prefix) {
			continue
		}

		key := KeyFromMountPoint(mountPoint)
		if key == "" {
			continue
		}

		u, err := l.stat(mountPoint)
		if err != nil {
			l.logger.Debug("statfs failed", zap.String("mount_point", mountPoint), zap.Error(err))
			continue
		}
		sizes[key] = u.Used()
	}
	if err := sc.Err(); err != nil {
		l.logger.Warn("mount table read interrupted", zap.Error(err), zap.Int("entries", len(sizes)))
	}

	return sizes
}

// KeyFromMountPoint returns the application key encoded in a container mount point:
// the last path segment up to its first '-', or the whole segment if it has none.
func KeyFromMountPoint(mountPoint string) string {
	seg := strings.TrimRight(mountPoint, "/")
	if i := strings.LastIndexByte(seg, '/'); i >= 0 {
		seg = seg[i+1:]
	}
	if i := strings.IndexByte(seg, '-'); i >= 0 {
		seg = seg[:i]
	}
	return seg
}
