// Package localfs enumerates applications installed as directories and measures them.
package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/ygrebnov/appsize"
)

// App describes one application directory.
type App struct {
	Key      string `mapstructure:"key"`
	Label    string `mapstructure:"label"`
	Path     string `mapstructure:"path"`
	External bool   `mapstructure:"external"`
}

// Catalog maps item keys to application directories and measures them.
type Catalog struct {
	dirs   map[string]string
	open   func(dir string) fs.FS
	logger *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFS replaces the function that opens an application directory.
func WithFS(open func(dir string) fs.FS) Option {
	return func(c *Catalog) {
		if open != nil {
			c.open = open
		}
	}
}

func newCatalog(opts []Option) *Catalog {
	c := &Catalog{
		dirs:   make(map[string]string),
		open:   os.DirFS,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FromApps builds a catalog from an explicit list. Items keep the order of apps.
// An app without a label is labelled with its key; a repeated key keeps the first app.
func FromApps(apps []App, opts ...Option) (*Catalog, []appsize.Item) {
	c := newCatalog(opts)
	return c, c.add(apps)
}

// add registers apps and returns their items in order.
func (c *Catalog) add(apps []App) []appsize.Item {
	items := make([]appsize.Item, 0, len(apps))
	for _, a := range apps {
		if a.Key == "" {
			c.logger.Warn("app without key ignored", zap.String("path", a.Path))
			continue
		}
		if _, dup := c.dirs[a.Key]; dup {
			c.logger.Warn("duplicate app key ignored", zap.String("key", a.Key), zap.String("path", a.Path))
			continue
		}
		label := a.Label
		if label == "" {
			label = a.Key
		}
		c.dirs[a.Key] = a.Path
		items = append(items, appsize.Item{Key: a.Key, Label: label, External: a.External})
	}
	return items
}

// Scan lists the subdirectories of internalRoot and, if set, externalRoot. Each
// subdirectory is one application keyed by its name; those under externalRoot are
// external. Items are sorted by name within each root, internal ones first.
//
// A missing externalRoot is logged and ignored. A missing internalRoot is an error.
func Scan(internalRoot, externalRoot string, opts ...Option) (*Catalog, []appsize.Item, error) {
	var apps []App

	internal, err := listDirs(internalRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("localfs: scan %s: %w", internalRoot, err)
	}
	for _, name := range internal {
		apps = append(apps, App{Key: name, Label: name, Path: filepath.Join(internalRoot, name)})
	}

	c := newCatalog(opts)
	if externalRoot != "" {
		external, err := listDirs(externalRoot)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			c.logger.Info("external root not present", zap.String("path", externalRoot))
		case err != nil:
			c.logger.Warn("external root unreadable", zap.String("path", externalRoot), zap.Error(err))
		}
		for _, name := range external {
			apps = append(apps, App{Key: name, Label: name, Path: filepath.Join(externalRoot, name), External: true})
		}
	}

	return c, c.add(apps), nil
}

func listDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Dir returns the directory of the application with the given key.
func (c *Catalog) Dir(key string) (string, bool) {
	d, ok := c.dirs[key]
	return d, ok
}

// Len returns the number of applications in the catalog.
func (c *Catalog) Len() int { return len(c.dirs) }
