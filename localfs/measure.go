package localfs

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/ygrebnov/appsize"
)

type component int

const (
	code component = iota
	data
	cache
	media
)

// classify maps the top-level entry of an application directory to a size component.
func classify(top string) component {
	switch strings.ToLower(top) {
	case "bin", "lib":
		return code
	case "cache":
		return cache
	case "media":
		return media
	default:
		return data
	}
}

// Measure walks the directory of item and sums the sizes of its regular files.
// It matches appsize.MeasureFunc and is meant to be wrapped with appsize.Async.
//
// Top-level bin and lib count as code, cache as cache and everything else as data.
// For external items the sizes go to the external components, where a top-level
// media directory counts as media.
func (c *Catalog) Measure(ctx context.Context, item appsize.Item) (appsize.Stats, error) {
	dir, ok := c.dirs[item.Key]
	if !ok {
		return appsize.Stats{}, fmt.Errorf("%w: unknown app %q", appsize.ErrMeasurementFailed, item.Key)
	}

	var sizes [4]int64
	fsys := c.open(dir)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		top, _, _ := strings.Cut(path, "/")
		if top == path {
			sizes[data] += info.Size()
			return nil
		}
		sizes[classify(top)] += info.Size()
		return nil
	})
	if err != nil {
		return appsize.Stats{}, fmt.Errorf("%w: %s: %w", appsize.ErrMeasurementFailed, dir, err)
	}

	c.logger.Debug("app measured",
		zap.String("key", item.Key),
		zap.Int64("code", sizes[code]),
		zap.Int64("data", sizes[data]),
		zap.Int64("cache", sizes[cache]),
		zap.Int64("media", sizes[media]),
	)

	if item.External {
		return appsize.Stats{
			ExternalCodeSize:  sizes[code],
			ExternalDataSize:  sizes[data],
			ExternalCacheSize: sizes[cache],
			ExternalMediaSize: sizes[media],
		}, nil
	}
	return appsize.Stats{
		CodeSize:  sizes[code],
		DataSize:  sizes[data] + sizes[media],
		CacheSize: sizes[cache],
	}, nil
}
