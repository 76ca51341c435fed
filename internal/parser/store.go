package parser

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// storeNameWindow bounds the scan: merchant names live at the top of a
// receipt, so only the first 10 lines are candidates.
const storeNameWindow = 10

var (
	rePhoneNumber = regexp.MustCompile(`\d{2,4}-\d{2,4}-\d{4}`)
	reYenDigits   = regexp.MustCompile(`[¥円]\s*\d+|\d+\s*円`)
	reFullDate    = regexp.MustCompile(`\d{4}[-年/]\d{1,2}[-月/]\d{1,2}`)
)

// Lines carrying totals language are register output, never a store name.
var storeExcludeKeywords = []string{"合計", "小計", "税込", "税", "消費税", "総額", "お預かり", "お返し"}

// ExtractStoreName scores each of the first lines as a merchant-name
// candidate and returns the strictly best one; on equal scores the earliest
// line wins. Returns "" for an empty line sequence.
func ExtractStoreName(lines []Line) string {
	best := ""
	bestScore := math.Inf(-1)
	for _, ln := range lines {
		if ln.Index >= storeNameWindow {
			break
		}
		if score := scoreStoreLine(ln); score > bestScore {
			bestScore = score
			best = ln.Text
		}
	}
	return best
}

func scoreStoreLine(ln Line) float64 {
	score := 0.0
	if ln.Index < 5 {
		score += 2
	}
	// store names tend to be full words, not short codes
	score += 0.1 * float64(utf8.RuneCountInString(ln.Text))
	score -= 1.5 * float64(countDigits(ln.Text))
	if rePhoneNumber.MatchString(ln.Text) {
		score -= 5
	}
	if strings.Contains(ln.Text, "〒") {
		score -= 5
	}
	for _, kw := range storeExcludeKeywords {
		if strings.Contains(ln.Text, kw) {
			score -= 5
			break
		}
	}
	if reYenDigits.MatchString(ln.Text) {
		score -= 3
	}
	if reFullDate.MatchString(ln.Text) {
		score -= 2
	}
	return score
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
