package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reJPDate   = regexp.MustCompile(`\d{4}年\s*\d{1,2}月\s*\d{1,2}日|\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	reJPYen    = regexp.MustCompile(`[¥￥]\s*\d|\d\s*円`)
	reJPAmount = regexp.MustCompile(`\d{1,3}(,\d{3})+|\d{3,}`)
)

// heuristicConfidence estimates decode quality from receipt artifacts in the
// text: a date, a currency marker and amount-like numbers each raise it.
func heuristicConfidence(txt string) float64 {
	score := 0.2 // base
	if reJPDate.MatchString(txt) {
		score += 0.2
	}
	if reJPYen.MatchString(txt) {
		score += 0.15
	}
	if reJPAmount.MatchString(txt) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// tsvConfidence runs tesseract in TSV mode and returns the mean word
// confidence in 0..1.
func (e *Extractor) tsvConfidence(ctx context.Context, path string) (float64, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path, "tsv")...)
	if err != nil {
		return 0, fmt.Errorf("tesseract tsv: %w (%s)", err, truncate(string(errb), 512))
	}

	var sum float64
	var n int
	for i, line := range strings.Split(string(out), "\n") {
		if i == 0 {
			continue // header
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf <= 0 {
			continue
		}
		if strings.TrimSpace(cols[11]) == "" {
			continue
		}
		sum += conf
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no confident words in tsv output")
	}
	return sum / float64(n) / 100.0, nil
}

// CleanText unifies line breaks, drops blank lines and collapses runs of
// whitespace, mirroring what the downstream normalizer expects.
func CleanText(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cleaned = append(cleaned, strings.Join(fields, " "))
	}
	return strings.Join(cleaned, "\n")
}
