// overlap.go - Suffix/Praefix-Ueberlappung fuer Marker an Chunk-Grenzen
package fence

import "bytes"

// overlap gibt die Laenge des laengsten Suffixes von buf zurueck, das ein
// echter Praefix von delim ist. Ein vollstaendiger Treffer zaehlt nicht.
func overlap(buf []byte, delim string) int {
	n := min(len(buf), len(delim)-1)
	for i := n; i > 0; i-- {
		if bytes.HasSuffix(buf, []byte(delim[:i])) {
			return i
		}
	}
	return 0
}

// maxOverlap nimmt das Maximum von overlap ueber alle Marker.
func maxOverlap(buf []byte, delims ...string) int {
	var longest int
	for _, d := range delims {
		longest = max(longest, overlap(buf, d))
	}
	return longest
}

// indexMarker sucht das frueheste Vorkommen eines Markers. Bei gleicher
// Position gewinnt der laengere Marker.
func indexMarker(buf []byte, delims ...string) (int, string) {
	pos := -1
	var found string
	for _, d := range delims {
		i := bytes.Index(buf, []byte(d))
		if i == -1 {
			continue
		}
		if pos == -1 || i < pos || (i == pos && len(d) > len(found)) {
			pos, found = i, d
		}
	}
	return pos, found
}
