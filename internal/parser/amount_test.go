package parser

import (
	"reflect"
	"testing"
)

func TestAmountsInLine(t *testing.T) {
	tests := []struct {
		input string
		want  []int
	}{
		// 円 is a word character, so the unit-suffixed form belongs to the
		// symbol/unit family only
		{"990円", []int{990}},
		{"800円", []int{800}},
		{"合計 ¥1,200", []int{1200, 200}},
		{"お預かり 2,000円", []int{2000}},
		// both families match a truly bare run; the duplicate is intentional
		{"1234", []int{1234, 1234}},
		// ¥ is not a word character, so a symbol-prefixed run is still bare
		{"¥500 ¥600", []int{500, 600, 500, 600}},
		// flanked by letters: not a standalone run, symbol/unit family only
		{"No1234", []int{1234}},
		{"50", nil},
		{"099", nil},
		{"12,000,000", nil},
		{"no numbers here", nil},
		// phone fragments look like amounts; the caller filters phone lines
		{"TEL 03-1234-5678", []int{1234, 5678, 1234, 5678}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := amountsInLine(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("amountsInLine(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAmountsInLineRange(t *testing.T) {
	for _, input := range []string{"99", "10,000,001", "0"} {
		if got := amountsInLine(input); got != nil {
			t.Errorf("amountsInLine(%q) = %v, want none (out of range)", input, got)
		}
	}
}
