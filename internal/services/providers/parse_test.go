package providers

import (
	"reflect"
	"testing"
)

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "bare JSON array",
			text: `["First Title", "Second Title"]`,
			want: []string{"First Title", "Second Title"},
		},
		{
			name: "fenced JSON array",
			text: "```json\n[\"First Title\", \"Second Title\"]\n```",
			want: []string{"First Title", "Second Title"},
		},
		{
			name: "array embedded in prose",
			text: `Here are your titles: ["First Title", "Second Title"] Hope that helps!`,
			want: []string{"First Title", "Second Title"},
		},
		{
			name: "numbered list fallback",
			text: "1. First Title\n2. Second Title\n",
			want: []string{"First Title", "Second Title"},
		},
		{
			name: "bulleted list fallback",
			text: "- First Title\n- Second Title",
			want: []string{"First Title", "Second Title"},
		},
		{
			name: "blank entries dropped",
			text: `["First Title", "", "  "]`,
			want: []string{"First Title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCandidates(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCandidates(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{"the quick brown fox", 5},
	}
	for _, tt := range tests {
		if got := EstimateTokenCount(tt.text); got != tt.want {
			t.Errorf("EstimateTokenCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
