// tools_search.go - Such-Funktionen fuer Fence-Bloecke und Tool-Namen
// Enthaelt: TextContent, Suggest

package tools

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/dlclark/regexp2"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/fence"
)

var (
	// fenceBlock trifft abgeschlossene Bloecke und einen offenen Block am Ende.
	fenceBlock = regexp2.MustCompile(fenceBlockPattern(), regexp2.None)
	blankLines = regexp2.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`, regexp2.None)
)

func fenceBlockPattern() string {
	starts := make([]string, len(fence.StartMarkers))
	for i, m := range fence.StartMarkers {
		starts[i] = regexp2.Escape(m)
	}
	return `(?:` + strings.Join(starts, "|") + `)[\s\S]*?(?:` + regexp2.Escape(fence.EndMarker) + `|\z)`
}

// TextContent entfernt alle Tool-Call-Fences aus s, fasst Leerzeilen
// zusammen und trimmt den Rand.
func TextContent(s string) string {
	out, err := fenceBlock.Replace(s, "", -1, -1)
	if err != nil {
		out = s
	}

	if collapsed, err := blankLines.Replace(out, "\n\n", -1, -1); err == nil {
		out = collapsed
	}

	return strings.TrimSpace(out)
}

// Suggest gibt den bekannten Tool-Namen zurueck, der name am aehnlichsten
// ist. Zu weit entfernte Namen ergeben ok == false.
func Suggest(name string, tools api.Tools) (string, bool) {
	best, bestDist := "", -1
	for _, known := range tools.Names() {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(known))
		if bestDist == -1 || d < bestDist {
			best, bestDist = known, d
		}
	}

	if bestDist == -1 || bestDist > max(2, len(name)/3) {
		return "", false
	}
	return best, true
}
