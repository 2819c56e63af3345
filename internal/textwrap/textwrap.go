// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package textwrap reflows mixed Latin/CJK text to a fixed column budget
// for plain-text mail bodies.
//
// Widths are deliberately coarse: anything outside ASCII counts as two
// columns. Existing report layouts are tuned to this rule, so it must not
// be replaced with a full East Asian Width table.
//
// A break is only taken once the current line holds at least one rune, so
// a rune wider than the budget stays on its own line instead of leaving an
// empty line in front of it: Reflow("あい", 1) yields "あ\nい".
package textwrap

import (
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// noBreakBefore is the closed set of characters that must not start a line.
var noBreakBefore = map[rune]struct{}{
	'、': {}, '。': {}, 'ー': {},
	'ぁ': {}, 'ぃ': {}, 'ぅ': {}, 'ぇ': {}, 'ぉ': {},
	'ゃ': {}, 'ゅ': {}, 'ょ': {}, 'ゎ': {}, 'っ': {},
	'「': {}, '」': {}, '｛': {}, '｝': {},
	'『': {}, '』': {}, '【': {}, '】': {},
}

// Width returns the display width of r: 1 for ASCII, 2 for everything else.
func Width(r rune) int {
	if r < 0x80 {
		return 1
	}
	return 2
}

// StringWidth sums Width over every rune of s.
func StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += Width(r)
	}
	return w
}

// NoBreakBefore reports whether r is forbidden at the start of a wrapped line.
func NoBreakBefore(r rune) bool {
	_, ok := noBreakBefore[r]
	return ok
}

// Reflow wraps every line of text so that it fits in columns display cells.
//
// A break is inserted before a rune when adding it would exceed the budget,
// unless the rune is a no-break-before character, in which case it is kept
// on the current line even if that line ends up over budget. A rune wider
// than the budget is placed alone on its own line without an empty line
// ahead of it. Lines are joined with "\n"; CRLF input is normalized.
// A non-positive budget disables wrapping.
func Reflow(text string, columns int) string {
	lines := lineBreak.Split(text, -1)
	if columns <= 0 {
		return strings.Join(lines, "\n")
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, columns)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, columns int) []string {
	var (
		out   []string
		cur   strings.Builder
		width int
	)
	for _, r := range line {
		w := Width(r)
		if width > 0 && width+w > columns && !NoBreakBefore(r) {
			out = append(out, cur.String())
			cur.Reset()
			width = 0
		}
		cur.WriteRune(r)
		width += w
	}
	return append(out, cur.String())
}
