package caret

import "github.com/rivo/uniseg"

// nextClusterOffset returns the end of the first visible grapheme cluster
// at or after offset. Marker characters are stepped over as if absent.
func nextClusterOffset(s string, offset int) (int, bool) {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		_, to := g.Positions()
		if to <= offset {
			continue
		}
		if g.Str() == ZWSP {
			continue
		}
		return to, true
	}
	return 0, false
}

// prevClusterOffset returns the start of the last visible grapheme cluster
// that begins before offset.
func prevClusterOffset(s string, offset int) (int, bool) {
	result, found := 0, false
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		from, _ := g.Positions()
		if from >= offset {
			break
		}
		if g.Str() == ZWSP {
			continue
		}
		result, found = from, true
	}
	return result, found
}
