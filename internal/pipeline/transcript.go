package pipeline

import (
	"strings"
	"unicode/utf8"
)

const elisionMarker = "\n\n[...middle of conversation...]\n\n"

// reduceTranscript keeps the first and last keep runes of transcripts
// longer than threshold runes, joined by an elision marker.
func reduceTranscript(t string, threshold, keep int) string {
	if utf8.RuneCountInString(t) <= threshold {
		return t
	}
	r := []rune(t)
	return string(r[:keep]) + elisionMarker + string(r[len(r)-keep:])
}

// headRunes returns at most n leading runes of s.
func headRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func trimmedLen(s string) int {
	return runeLen(strings.TrimSpace(s))
}
