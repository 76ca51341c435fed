package parser

import "testing"

func TestExtractStoreName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain name on top beats noisy lines",
			input: "ABC Mart\n2025年1月15日\n合計 ¥1,200\n現金 2,000\nお釣り 800",
			want:  "ABC Mart",
		},
		{
			name:  "phone and postal lines lose",
			input: "〒123-4567 東京都港区\n03-1234-5678\nストアジャパン",
			want:  "ストアジャパン",
		},
		{
			name:  "totals language is register output",
			input: "合計 1200円\nコンビニ各務原店",
			want:  "コンビニ各務原店",
		},
		{
			name:  "single line",
			input: "スーパーマーケット",
			want:  "スーパーマーケット",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractStoreName(NormalizeLines(tt.input)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractStoreNameEmpty(t *testing.T) {
	if got := ExtractStoreName(nil); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestExtractStoreNameWindow(t *testing.T) {
	// only the first 10 lines are candidates; a perfect name below the
	// window is never picked
	var lines []Line
	for i := 0; i < 10; i++ {
		lines = append(lines, Line{Text: "x1", Index: i})
	}
	lines = append(lines, Line{Text: "Wonderful Store", Index: 10})

	if got := ExtractStoreName(lines); got != "x1" {
		t.Errorf("got %q, want line inside the window", got)
	}
}

func TestExtractStoreNameTieKeepsEarliest(t *testing.T) {
	// identical lines score identically; strict > keeps the first
	lines := []Line{
		{Text: "Mart", Index: 0},
		{Text: "Mart", Index: 1},
	}
	if got := ExtractStoreName(lines); got != "Mart" {
		t.Errorf("got %q, want %q", got, "Mart")
	}
}
