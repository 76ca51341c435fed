package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	reDateKanji = regexp.MustCompile(`(\d{4})年\s*(\d{1,2})月\s*(\d{1,2})日`)
	reDateISO   = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
)

// ExtractDate finds a calendar date anywhere in the raw text and returns it
// canonicalized to YYYY-MM-DD. The 年月日 form takes priority over the
// ISO/slash form. Only the first match of each form is considered; a match
// that is not a real calendar date falls through to the next form.
func ExtractDate(text string) (string, bool) {
	for _, re := range []*regexp.Regexp{reDateKanji, reDateISO} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		s := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s, true
		}
	}
	return "", false
}
