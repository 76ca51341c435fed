package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausible range for a consumption-tax amount (whole yen).
const (
	minTax = 1
	maxTax = 1_000_000
)

var reDigitGroup = regexp.MustCompile(`[\d,]+`)

// ExtractTaxAmount scans lines in order for the first tax line and returns
// its first plausible value. A line mentioning 税込/税抜 without 消費税 is
// totals language about tax status, not a tax amount, and does not qualify.
func ExtractTaxAmount(lines []Line) (int, bool) {
	for _, ln := range lines {
		if !isTaxAmountLine(ln.Text) {
			continue
		}
		for _, m := range reDigitGroup.FindAllString(ln.Text, -1) {
			v, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
			if err != nil || v < minTax || v > maxTax {
				continue
			}
			return v, true
		}
	}
	return 0, false
}

func isTaxAmountLine(s string) bool {
	if strings.Contains(s, "消費税") {
		return true
	}
	return strings.Contains(s, "税") &&
		!strings.Contains(s, "税込") &&
		!strings.Contains(s, "税抜")
}
