package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab() map[string]int32 {
	return map[string]int32{"[PAD]": 0, "[UNK]": 1, "the": 2, "economy": 3, "goal": 4, "match": 5, "news": 6}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "Breaking News!", want: []string{"breaking", "news"}},
		{in: "  multiple\t\tspaces\nand lines ", want: []string{"multiple", "spaces", "and", "lines"}},
		{in: "it's a U.S.-made car", want: []string{"its", "a", "usmade", "car"}},
		{in: "Café MÜNCHEN 2024", want: []string{"café", "münchen", "2024"}},
		{in: "snake_case stays", want: []string{"snake_case", "stays"}},
		{in: "?!...", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(testVocab(), 5, "", "")

	assert.Equal(t, []int32{2, 3, 6, 0, 0}, tok.Tokenize("The economy, news."))
	assert.Equal(t, []int32{1, 3, 0, 0, 0}, tok.Tokenize("breaking economy"), "unknown words map to unk")
	assert.Equal(t, []int32{2, 2, 2, 2, 2}, tok.Tokenize("the the the the the the the"), "truncated to max length")
	assert.Equal(t, []int32{0, 0, 0, 0, 0}, tok.Tokenize(""))
}

func TestTokenizer_Defaults(t *testing.T) {
	tok := NewTokenizer(map[string]int32{"hello": 7}, 0, "", "")
	assert.Equal(t, defaultMaxLength, tok.MaxLength())
	assert.Equal(t, int32(0), tok.PadIndex())

	ids := tok.Tokenize("hello world")
	require.Len(t, ids, defaultMaxLength)
	assert.Equal(t, int32(7), ids[0])
	assert.Equal(t, int32(1), ids[1], "default unk index")

	custom := NewTokenizer(map[string]int32{"<pad>": 9, "<unk>": 8, "x": 1}, 3, "<pad>", "<unk>")
	assert.Equal(t, []int32{1, 8, 9}, custom.Tokenize("x y"))
}

func TestLoadTokenizer(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vocab":{"[PAD]":0,"[UNK]":1,"goal":2},"max_length":3}`), 0o600))
	tok, err := LoadTokenizer(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 1, 0}, tok.Tokenize("Goal! scored"))

	_, err = LoadTokenizer(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"vocab":{}}`), 0o600))
	_, err = LoadTokenizer(bad)
	require.Error(t, err)
}
