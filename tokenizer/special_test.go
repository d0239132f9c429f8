package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitSpecialTokens(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		specials []SpecialToken
		expected []fragment
	}{
		{
			name:     "no special tokens in text",
			input:    "hello world",
			specials: []SpecialToken{{"<special>", 300}},
			expected: []fragment{
				{value: "hello world"},
			},
		},
		{
			name:     "single special token at start",
			input:    "<bos>hello",
			specials: []SpecialToken{{"<bos>", 300}},
			expected: []fragment{
				{value: "<bos>", id: 300, ok: true},
				{value: "hello"},
			},
		},
		{
			name:     "single special token at end",
			input:    "hello<eos>",
			specials: []SpecialToken{{"<eos>", 301}},
			expected: []fragment{
				{value: "hello"},
				{value: "<eos>", id: 301, ok: true},
			},
		},
		{
			name:     "multiple occurrences of same token",
			input:    "<s>hello<s>world<s>",
			specials: []SpecialToken{{"<s>", 300}},
			expected: []fragment{
				{value: "<s>", id: 300, ok: true},
				{value: "hello"},
				{value: "<s>", id: 300, ok: true},
				{value: "world"},
				{value: "<s>", id: 300, ok: true},
			},
		},
		{
			name:     "multiple different special tokens",
			input:    "<bos>hello<sep>world<eos>",
			specials: []SpecialToken{{"<bos>", 300}, {"<sep>", 301}, {"<eos>", 302}},
			expected: []fragment{
				{value: "<bos>", id: 300, ok: true},
				{value: "hello"},
				{value: "<sep>", id: 301, ok: true},
				{value: "world"},
				{value: "<eos>", id: 302, ok: true},
			},
		},
		{
			name:     "substring special token with smaller id wins",
			input:    "xABCy",
			specials: []SpecialToken{{"AB", 300}, {"ABC", 301}},
			expected: []fragment{
				{value: "x"},
				{value: "AB", id: 300, ok: true},
				{value: "Cy"},
			},
		},
		{
			name:     "input is exactly a special token",
			input:    "<special>",
			specials: []SpecialToken{{"<special>", 300}},
			expected: []fragment{
				{value: "<special>", id: 300, ok: true},
			},
		},
		{
			name:     "empty input",
			input:    "",
			specials: []SpecialToken{{"<special>", 300}},
			expected: []fragment{
				{value: ""},
			},
		},
		{
			name:     "no specials",
			input:    "hello world",
			specials: nil,
			expected: []fragment{{value: "hello world"}},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSpecialTokens(tt.input, tt.specials)
			if diff := cmp.Diff(tt.expected, got, cmp.AllowUnexported(fragment{})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
