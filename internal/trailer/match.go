package trailer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/moodflix/moodflix/pkg/youtube"
)

// MatchPolicy picks the index of the preferred candidate, or -1 when there
// are none.
type MatchPolicy func(candidates []youtube.Video) int

// aggregatorChannels are channel name fragments of known trailer outlets.
var aggregatorChannels = []string{"movieclips", "trailers"}

// FirstOfficial returns the first candidate, in upstream order, whose title
// mentions both "official" and "trailer", or whose channel is official or a
// trailer aggregator. If none qualifies the first candidate wins.
func FirstOfficial(candidates []youtube.Video) int {
	if len(candidates) == 0 {
		return -1
	}
	for i, v := range candidates {
		if IsPreferred(v) {
			return i
		}
	}
	return 0
}

// IsPreferred reports whether v looks like an official trailer upload.
func IsPreferred(v youtube.Video) bool {
	title := fold(v.Title)
	channel := fold(v.ChannelTitle)

	if strings.Contains(title, "official") && strings.Contains(title, "trailer") {
		return true
	}
	if strings.Contains(channel, "official") {
		return true
	}
	for _, a := range aggregatorChannels {
		if strings.Contains(channel, a) {
			return true
		}
	}
	return false
}

// fold lowercases s and strips accents so "OFFICIAL", "Official" and
// "Officiál" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	result, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return result
}
