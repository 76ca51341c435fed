package parser

import "strings"

// Line is a trimmed, whitespace-collapsed, non-empty line with its stable
// position in the normalized sequence.
type Line struct {
	Text  string
	Index int
}

// NormalizeLines splits raw OCR text into lines, trims each, drops the ones
// that become empty and collapses runs of internal whitespace to a single
// space. Order is preserved; empty input yields an empty slice. Emptiness is
// the caller's problem, not ours.
// foldWidthDigits maps full-width digits (０-９), which tesseract sometimes
// emits for Japanese receipts, onto their ASCII forms so the digit patterns
// and strconv can see them.
func foldWidthDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return '0' + (r - '０')
		}
		return r
	}, text)
}

func NormalizeLines(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, Line{
			Text:  strings.Join(fields, " "),
			Index: len(lines),
		})
	}
	return lines
}
