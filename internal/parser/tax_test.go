package parser

import "testing"

func TestExtractTaxAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{
			name:  "consumption tax line",
			input: "小計 900\n消費税 90\n合計 990円",
			want:  90,
			ok:    true,
		},
		{
			name:  "plain tax marker",
			input: "税 120\n合計 1,320円",
			want:  120,
			ok:    true,
		},
		{
			name:  "tax-included marker alone does not qualify",
			input: "税込 1,100円",
			want:  0,
			ok:    false,
		},
		{
			name:  "tax-excluded marker alone does not qualify",
			input: "税抜 1,000円",
			want:  0,
			ok:    false,
		},
		{
			name:  "first plausible value on the line",
			input: "消費税 (10% 対象 1,100円) 100円",
			want:  10,
			ok:    true,
		},
		{
			name:  "value above range is skipped",
			input: "消費税 2,000,000",
			want:  0,
			ok:    false,
		},
		{
			name:  "no tax line",
			input: "ABC Mart\n合計 1,200円",
			want:  0,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTaxAmount(NormalizeLines(tt.input))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (got %d)", ok, tt.ok, got)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
