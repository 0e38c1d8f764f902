package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		text  string
		n     int
		want  string
	}{
		{name: "empty text", title: "Anything", text: "", n: 2, want: ""},
		{name: "whitespace text", title: "Anything", text: "   \n\t ", n: 2, want: ""},
		{name: "zero sentences requested", title: "T", text: "One. Two.", n: 0, want: ""},
		{
			name:  "keywords and position beat early sentences",
			title: "Cats and Dogs",
			text: "Pets are popular. Many people own one. " +
				"Most households with cats and dogs report that the animals get along surprisingly well over time.",
			n:    1,
			want: "Most households with cats and dogs report that the animals get along surprisingly well over time.",
		},
		{
			name:  "top two in rank order",
			title: "Cats and Dogs",
			text: "Pets are popular. Dogs bark loudly. " +
				"Most households with cats and dogs report that the animals get along surprisingly well over time.",
			n:    2,
			want: "Most households with cats and dogs report that the animals get along surprisingly well over time. Dogs bark loudly.",
		},
		{
			name:  "n larger than sentence count",
			title: "",
			text:  "First one. Second one.",
			n:     5,
			want:  "Second one. First one.",
		},
		{
			name:  "decimal numbers do not split sentences",
			title: "price",
			text:  "The price rose to 3.5 dollars today. Nothing else happened.",
			n:     1,
			want:  "The price rose to 3.5 dollars today.",
		},
		{
			name:  "title abbreviation stays with its sentence",
			title: "lab",
			text:  "Dr. Smith arrived at the lab. He left.",
			n:     1,
			want:  "Dr. Smith arrived at the lab.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.title, tt.text, tt.n))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "plain", text: "One is here. Two is here.", want: []string{"One is here.", "Two is here."}},
		{name: "title abbreviation", text: "Dr. Smith arrived at the lab. He left.",
			want: []string{"Dr. Smith arrived at the lab.", "He left."}},
		{name: "several abbreviations", text: "Mrs. Jones met Mr. Brown at St. Mary church. They talked.",
			want: []string{"Mrs. Jones met Mr. Brown at St. Mary church.", "They talked."}},
		{name: "versus", text: "It was Apples vs. Oranges again. Nobody won.",
			want: []string{"It was Apples vs. Oranges again.", "Nobody won."}},
		{name: "numbered reference", text: "Results are in No. 5 of the journal. See Fig. 2 too.",
			want: []string{"Results are in No. 5 of the journal.", "See Fig. 2 too."}},
		{name: "numeric abbreviation word ends a sentence", text: "He said no. Then he left.",
			want: []string{"He said no.", "Then he left."}},
		{name: "initialisms before lowercase", text: "The U.S. economy grew, e.g. in retail. Markets rallied.",
			want: []string{"The U.S. economy grew, e.g. in retail.", "Markets rallied."}},
		{name: "abbreviation at paragraph end", text: "We stayed on Main St.\nThe next day was calm.",
			want: []string{"We stayed on Main St.", "The next day was calm."}},
		{name: "empty", text: "  ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, split(tt.text))
		})
	}
}

func TestSummarize_LaterSentencesScoreHigher(t *testing.T) {
	// equal length and no keywords, only position differs
	got := Summarize("", "Aa. Bb. Cc.", 3)
	assert.Equal(t, "Cc. Bb. Aa.", got)
}

func TestSummarize_Deterministic(t *testing.T) {
	title := "Go release notes"
	text := "Go 1.24 ships today. The release includes generic type aliases. Performance improved across the board. " +
		"The go command got several fixes. Release notes list all changes."
	first := Summarize(title, text, 2)
	for range 10 {
		assert.Equal(t, first, Summarize(title, text, 2))
	}
}

func TestSummarizer_DefaultSentences(t *testing.T) {
	text := "One is here. Two is here. Three is here."
	assert.Equal(t, Summarize("", text, DefaultSentences), Summarizer{}.Summarize("", text))
	assert.Equal(t, Summarize("", text, 1), Summarizer{Sentences: 1}.Summarize("", text))
}
