package appsize

import (
	"cmp"
	"strings"
)

// BySizeDesc orders entries by total size, largest first, then by label and key.
// For items with unique keys it is a total order.
var BySizeDesc = OrderBy(bySizeDesc, byLabel, byKey)

// OrderBy combines comparators: later ones break ties left by earlier ones.
func OrderBy(cmps ...func(a, b Entry) int) func(a, b Entry) int {
	return func(a, b Entry) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

func bySizeDesc(a, b Entry) int { return cmp.Compare(b.Size, a.Size) }

// byLabel compares labels case-insensitively, falling back to the exact bytes.
func byLabel(a, b Entry) int {
	if r := strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label)); r != 0 {
		return r
	}
	return strings.Compare(a.Label, b.Label)
}

func byKey(a, b Entry) int { return strings.Compare(a.Key, b.Key) }

// AllItems is the eligibility predicate that measures every item.
func AllItems(Item) bool { return true }

// ExternalOnly measures only items installed on external storage.
func ExternalOnly(it Item) bool { return it.External }
