package parser

import (
	"math"
	"regexp"
	"strings"
)

var (
	strongTotalKeywords = []string{"お支払い合計", "お支払合計", "ご利用金額", "総計", "合計"}
	weakTotalKeywords   = []string{"税込合計", "計"}

	// amounts on tax-breakdown, deposit and change lines are never the total
	taxOrDepositWords = []string{"内消費税", "税額", "対象", "預り", "お預り", "お預かり", "お釣り", "釣"}

	rePhoneLine = regexp.MustCompile(`\d{2,4}-\d{2,4}-\d{3,4}`)
	reDateLine  = regexp.MustCompile(`\d{4}年|\d{1,2}月|\d{1,2}日`)
)

// Bare values in this window read as calendar years, not amounts.
const (
	yearLow  = 1900
	yearHigh = 2100
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func isSubtotalLine(s string) bool     { return strings.Contains(s, "小計") }
func isPhoneLine(s string) bool        { return strings.Contains(s, "-") && rePhoneLine.MatchString(s) }
func isDateLine(s string) bool         { return reDateLine.MatchString(s) }
func isTaxOrDepositLine(s string) bool { return containsAny(s, taxOrDepositWords) }

// ExtractTotalAmount picks the receipt total in three tiers, each returning
// on first success:
//
//  1. the first line carrying a strong total keyword (小計 and phone-number
//     lines are skipped), taking the maximum amount on that line;
//  2. same scan with the weaker keyword set;
//  3. scoring fallback over every remaining candidate, bottom 40% of the
//     receipt first, then the whole receipt if that window yields nothing.
func ExtractTotalAmount(lines []Line) (int, bool) {
	if len(lines) == 0 {
		return 0, false
	}

	for _, keywords := range [][]string{strongTotalKeywords, weakTotalKeywords} {
		for _, ln := range lines {
			if isSubtotalLine(ln.Text) || isPhoneLine(ln.Text) {
				continue
			}
			if !containsAny(ln.Text, keywords) {
				continue
			}
			if amounts := amountsInLine(ln.Text); len(amounts) > 0 {
				return maxAmountOf(amounts), true
			}
		}
	}

	start := int(0.6 * float64(len(lines)))
	if amt, ok := bestScoredAmount(lines[start:], start); ok {
		return amt, true
	}
	return bestScoredAmount(lines, start)
}

// bestScoredAmount scores every candidate amount in the window and keeps the
// strictly highest-scoring one; the first candidate encountered wins ties.
func bestScoredAmount(window []Line, start int) (int, bool) {
	bestScore := math.Inf(-1)
	best := 0
	found := false
	for _, ln := range window {
		if isPhoneLine(ln.Text) || isDateLine(ln.Text) || isTaxOrDepositLine(ln.Text) {
			continue
		}
		amounts := amountsInLine(ln.Text)
		if len(amounts) == 0 {
			continue
		}
		for _, amt := range amounts {
			if amt >= yearLow && amt <= yearHigh {
				continue
			}
			if s := scoreTotalCandidate(ln, len(amounts), start); s > bestScore {
				bestScore = s
				best = amt
				found = true
			}
		}
	}
	return best, found
}

func scoreTotalCandidate(ln Line, countOnLine, start int) float64 {
	score := 0.0
	if containsAny(ln.Text, strongTotalKeywords) {
		score += 100
	}
	if containsAny(ln.Text, weakTotalKeywords) {
		score += 40
	}
	// totals sit near the bottom of a receipt
	if ln.Index >= start {
		score += 20
	}
	if strings.ContainsAny(ln.Text, "円¥￥") {
		score += 10
	}
	if !isTaxOrDepositLine(ln.Text) {
		score += 10
	}
	// a line with exactly one number is a stronger single-amount signal
	if countOnLine == 1 {
		score += 5
	}
	return score
}
