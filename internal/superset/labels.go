// Package superset assigns display labels to groups of exercises performed
// back to back.
package superset

import "sort"

// Grouped is anything that may belong to a superset group and has an ordinal
// position.
type Grouped interface {
	SupersetGroupID() string
	Position() int
}

// Labels maps each superset group ID to a label. Items are ordered by
// position and groups are labelled "A", "B", ... in order of first
// appearance. Items without a group are ignored. Past "Z" labels continue
// as "AA", "AB", ... so every group keeps a distinct label.
func Labels[T Grouped](items []T) map[string]string {
	ordered := make([]T, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position() < ordered[j].Position() })

	labels := make(map[string]string)
	for _, item := range ordered {
		group := item.SupersetGroupID()
		if group == "" {
			continue
		}
		if _, ok := labels[group]; ok {
			continue
		}
		labels[group] = Label(len(labels))
	}
	return labels
}

// Label returns the label for the n-th group (0-based): A..Z, then AA, AB, ...
func Label(n int) string {
	if n < 0 {
		return ""
	}
	var b []byte
	for n >= 0 {
		b = append(b, byte('A'+n%26))
		n = n/26 - 1
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// maxLabelLen bounds Index input so the result fits comfortably in an int.
const maxLabelLen = 6

// Index is the inverse of Label. It returns -1 for anything that is not an
// uppercase label of at most six letters.
func Index(label string) int {
	if label == "" || len(label) > maxLabelLen {
		return -1
	}
	n := 0
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A') + 1
	}
	return n - 1
}

// Palette is the fixed set of superset colors.
var Palette = []string{"#FF9500", "#007AFF", "#AF52DE", "#34C759", "#FF2D55"}

// ColorFor returns the palette color for a label, cycling through the
// palette by label index. Unknown labels get the first color.
func ColorFor(label string) string {
	i := Index(label)
	if i < 0 {
		return Palette[0]
	}
	return Palette[i%len(Palette)]
}
