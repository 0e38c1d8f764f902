package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultMaxLength = 40
	defaultPadToken  = "[PAD]"
	defaultUnkToken  = "[UNK]"
)

// Tokenizer maps text to a fixed length sequence of vocabulary indices.
// It is read-only after construction and safe for concurrent use.
type Tokenizer struct {
	vocab     map[string]int32
	maxLength int
	padIndex  int32
	unkIndex  int32
}

// tokenizerFile is the on-disk tokenizer definition
type tokenizerFile struct {
	Vocab     map[string]int32 `json:"vocab"`
	MaxLength int              `json:"max_length"`
	PadToken  string           `json:"pad_token"`
	UnkToken  string           `json:"unk_token"`
}

// LoadTokenizer reads a tokenizer definition from a JSON file
func LoadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read tokenizer file: %w", err)
	}

	var tf tokenizerFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse tokenizer file %s: %w", path, err)
	}
	if len(tf.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer file %s has no vocabulary", path)
	}
	return NewTokenizer(tf.Vocab, tf.MaxLength, tf.PadToken, tf.UnkToken), nil
}

// NewTokenizer creates a tokenizer. Zero maxLength and empty special tokens take defaults,
// special tokens missing from the vocabulary map to index 0 (pad) and 1 (unk).
func NewTokenizer(vocab map[string]int32, maxLength int, padToken, unkToken string) *Tokenizer {
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}
	if padToken == "" {
		padToken = defaultPadToken
	}
	if unkToken == "" {
		unkToken = defaultUnkToken
	}

	t := &Tokenizer{vocab: make(map[string]int32, len(vocab)), maxLength: maxLength, padIndex: 0, unkIndex: 1}
	for k, v := range vocab {
		t.vocab[k] = v
	}
	if idx, ok := vocab[padToken]; ok {
		t.padIndex = idx
	}
	if idx, ok := vocab[unkToken]; ok {
		t.unkIndex = idx
	}
	return t
}

// Tokenize returns exactly MaxLength indices, truncated or padded with the pad index
func (t *Tokenizer) Tokenize(text string) []int32 {
	res := make([]int32, 0, t.maxLength)
	for _, w := range Normalize(text) {
		if len(res) == t.maxLength {
			break
		}
		idx, ok := t.vocab[w]
		if !ok {
			idx = t.unkIndex
		}
		res = append(res, idx)
	}
	for len(res) < t.maxLength {
		res = append(res, t.padIndex)
	}
	return res
}

// MaxLength returns the sequence length produced by Tokenize
func (t *Tokenizer) MaxLength() int { return t.maxLength }

// PadIndex returns the padding index
func (t *Tokenizer) PadIndex() int32 { return t.padIndex }

// Normalize lowercases text, drops everything except word characters and whitespace,
// and splits the result into words
func Normalize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
	return strings.Fields(cleaned)
}
