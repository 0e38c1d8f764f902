// Package summarizer builds extractive summaries by scoring the sentences of an article
package summarizer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// DefaultSentences is the summary length used when none is configured
const DefaultSentences = 2

// Summarizer produces summaries of a fixed number of sentences
type Summarizer struct {
	Sentences int
}

// Summarize returns the summary of text, see the package level Summarize
func (s Summarizer) Summarize(title, text string) string {
	n := s.Sentences
	if n <= 0 {
		n = DefaultSentences
	}
	return Summarize(title, text, n)
}

type scored struct {
	text  string
	score float64
}

// Summarize picks the n best scoring sentences of text and joins them with a space in rank order.
// A sentence scores min(chars/100, 1) for length, 0.1 per preceding sentence for position,
// and 1 for every distinct title word it contains. Ties keep document order.
func Summarize(title, text string, n int) string {
	if n <= 0 {
		return ""
	}
	sents := split(text)
	if len(sents) == 0 {
		return ""
	}

	words := titleWords(title)
	items := make([]scored, len(sents))
	for i, sent := range sents {
		lower := strings.ToLower(sent)
		lengthScore := min(float64(utf8.RuneCountInString(sent))/100, 1.0)
		positionScore := float64(i) * 0.1
		keywordScore := 0.0
		for _, w := range words {
			if strings.Contains(lower, w) {
				keywordScore++
			}
		}
		items[i] = scored{text: sent, score: lengthScore + positionScore + keywordScore}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	if n > len(items) {
		n = len(items)
	}
	res := make([]string, 0, n)
	for _, it := range items[:n] {
		res = append(res, it.text)
	}
	return strings.Join(res, " ")
}

// abbreviations never end a sentence, a segment ending in one is joined with the next.
// Numeric ones only hold when the next segment starts with a digit, as in "No. 5".
var abbreviations = map[string]bool{
	"mr.": false, "mrs.": false, "ms.": false, "dr.": false, "prof.": false, "st.": false, "mt.": false,
	"vs.": false, "gen.": false, "gov.": false, "sen.": false, "rep.": false, "rev.": false, "capt.": false,
	"lt.": false, "col.": false, "sgt.": false, "hon.": false,
	"no.": true, "nos.": true, "fig.": true, "vol.": true, "pp.": true, "ch.": true, "sec.": true,
}

// split segments text into trimmed, non-empty sentences using unicode sentence boundaries
func split(text string) []string {
	var res []string
	paragraphEnd := false // previous segment ended a line, abbreviations don't join across it
	iter := sentences.FromString(text)
	for iter.Next() {
		raw := iter.Value()
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if n := len(res); n > 0 && !paragraphEnd && continues(res[n-1], s) {
			res[n-1] += " " + s
		} else {
			res = append(res, s)
		}
		paragraphEnd = strings.ContainsAny(raw[len(strings.TrimRightFunc(raw, unicode.IsSpace)):], "\n\r\u2029")
	}
	return res
}

// continues reports whether next belongs to the sentence of prev, cut short after an abbreviation
func continues(prev, next string) bool {
	fields := strings.Fields(prev)
	last := strings.ToLower(strings.TrimLeft(fields[len(fields)-1], "([{\"'“‘"))
	numeric, ok := abbreviations[last]
	if !ok {
		return false
	}
	if !numeric {
		return true
	}
	r, _ := utf8.DecodeRuneInString(next)
	return unicode.IsDigit(r)
}

// titleWords returns distinct lowercase words of the title split on spaces
func titleWords(title string) []string {
	seen := map[string]bool{}
	var res []string
	for _, w := range strings.Split(strings.ToLower(title), " ") {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		res = append(res, w)
	}
	return res
}
