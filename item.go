package appsize

import "math"

// Item is one application to be measured.
// Items are read once from the enumeration source and never modified afterwards.
type Item struct {
	// Key identifies the item (e.g., a package name). Supplementary sizes are looked up by Key.
	Key string
	// Label is the human-readable name shown in progress reports.
	Label string
	// External reports whether the item is installed on external storage.
	External bool
}

// Stats holds the sizes reported by the measurement backend for one item, in bytes.
type Stats struct {
	CodeSize  int64
	DataSize  int64
	CacheSize int64

	ExternalCodeSize  int64
	ExternalDataSize  int64
	ExternalCacheSize int64
	ExternalMediaSize int64
}

// external returns the sum of all external-storage components.
func (s Stats) external() int64 {
	return s.ExternalCodeSize + s.ExternalDataSize + s.ExternalCacheSize + s.ExternalMediaSize
}

// SizeFilter selects which size components count towards Entry.Size.
type SizeFilter struct {
	Code     bool
	Data     bool
	Cache    bool
	External bool
}

// DefaultSizeFilter counts every component.
func DefaultSizeFilter() SizeFilter {
	return SizeFilter{Code: true, Data: true, Cache: true, External: true}
}

// Entry is the composite result for a successfully measured item.
type Entry struct {
	Item
	Stats Stats

	// Supplementary is the size obtained from the supplementary source.
	// Valid only when HasSupplementary is true.
	Supplementary    int64
	HasSupplementary bool

	// Size is the total of the components selected by the SizeFilter,
	// each rounded up to whole blocks.
	Size int64
}

// newEntry builds the composite entry for item. A supplementary size, when present,
// replaces the external components reported by the backend.
func newEntry(item Item, stats Stats, supp map[string]int64, filter SizeFilter, blockSize int64) Entry {
	e := Entry{Item: item, Stats: stats}
	if v, ok := supp[item.Key]; ok {
		e.Supplementary = v
		e.HasSupplementary = true
	}

	if filter.Code {
		e.Size += roundUp(stats.CodeSize, blockSize)
	}
	if filter.Data {
		e.Size += roundUp(stats.DataSize, blockSize)
	}
	if filter.Cache {
		e.Size += roundUp(stats.CacheSize, blockSize)
	}
	if filter.External {
		if e.HasSupplementary {
			e.Size += roundUp(e.Supplementary, blockSize)
		} else {
			e.Size += roundUp(stats.external(), blockSize)
		}
	}
	return e
}

// roundUp rounds size up to a multiple of blockSize. Non-positive sizes count as zero.
// Results that do not fit in an int64 saturate at math.MaxInt64.
func roundUp(size, blockSize int64) int64 {
	if size <= 0 {
		return 0
	}
	if blockSize <= 1 {
		return size
	}
	q := (size - 1) / blockSize
	if q >= math.MaxInt64/blockSize {
		return math.MaxInt64
	}
	return (q + 1) * blockSize
}
