package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Plausible currency range for totals and sub-amounts (whole yen).
const (
	minAmount = 100
	maxAmount = 10_000_000
)

var (
	// ¥1,234 / 1,234円 / 1234円. Symbol and unit are both optional, so this
	// family also catches every comma-grouped digit run.
	reYenAmount = regexp.MustCompile(`[¥￥]?\s*([\d,]+)\s*円?`)
	// bare digit runs of 3+; year-like values are excluded by the caller.
	// Word boundaries are checked by hand because regexp \b is ASCII-only
	// and a CJK neighbor must count as a word character: "800円" belongs to
	// the symbol/unit family alone, not to this one as well.
	reDigitRun = regexp.MustCompile(`\d{3,}`)
)

// amountsInLine returns every plausible amount on a line, in order of
// appearance within each pattern family. The two families overlap and the
// result is deliberately not deduplicated: a value matched in both forms
// appears twice, which is harmless because callers select via max/score.
func amountsInLine(line string) []int {
	var amounts []int
	for _, m := range reYenAmount.FindAllStringSubmatch(line, -1) {
		if v, ok := parseAmount(m[1]); ok {
			amounts = append(amounts, v)
		}
	}
	for _, loc := range reDigitRun.FindAllStringIndex(line, -1) {
		if !standaloneDigitRun(line, loc[0], loc[1]) {
			continue
		}
		if v, ok := parseAmount(line[loc[0]:loc[1]]); ok {
			amounts = append(amounts, v)
		}
	}
	return amounts
}

// standaloneDigitRun reports whether the digit run at [start,end) of line is
// flanked by non-word runes on both sides. Letters (CJK included), digits
// and underscore are word runes; currency symbols and punctuation are not.
func standaloneDigitRun(line string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(line[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(line) {
		if r, _ := utf8.DecodeRuneInString(line[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func parseAmount(s string) (int, bool) {
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || v < minAmount || v > maxAmount {
		return 0, false
	}
	return v, true
}

func maxAmountOf(amounts []int) int {
	best := amounts[0]
	for _, v := range amounts[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
