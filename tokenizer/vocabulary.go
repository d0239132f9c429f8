package tokenizer

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// baseVocabSize is the number of single-byte tokens. Merge ids start here.
const baseVocabSize = 256

// SpecialToken binds a literal string to a reserved id. It bypasses merging
// and expands to the UTF-8 bytes of Literal.
type SpecialToken struct {
	Literal string
	ID      int
}

// Vocabulary maps every token id to the raw bytes it expands to.
type Vocabulary map[int][]byte

// buildVocabulary derives the vocabulary from the byte alphabet, the merges
// in priority order and the special tokens. The merge at index i has id
// baseVocabSize+i; its children always have smaller ids so they are resolved
// before it. Collisions between special and merge ids are not checked here.
func buildVocabulary(merges []Pair, specials []SpecialToken) Vocabulary {
	vocab := make(Vocabulary, baseVocabSize+len(merges)+len(specials))
	for b := range baseVocabSize {
		vocab[b] = []byte{byte(b)}
	}

	for i, p := range merges {
		vocab.extend(baseVocabSize+i, p)
	}

	for _, s := range specials {
		vocab[s.ID] = []byte(s.Literal)
	}

	return vocab
}

// extend records id as the concatenation of its children's bytes.
func (v Vocabulary) extend(id int, p Pair) {
	left, right := v[p.Left], v[p.Right]
	b := make([]byte, 0, len(left)+len(right))
	b = append(b, left...)
	v[id] = append(b, right...)
}

// IDs returns the vocabulary ids in ascending order.
func (v Vocabulary) IDs() []int {
	ids := make([]int, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids
}

// Render returns the human-readable form of id, or false when id is unknown.
func (v Vocabulary) Render(id int) (string, bool) {
	b, ok := v[id]
	if !ok {
		return "", false
	}

	return render(b), true
}

// render interprets b as UTF-8, replacing each invalid byte with U+FFFD, and
// escapes control characters as \u{XXXX}.
func render(b []byte) string {
	// the UTF-8 decoder replaces invalid input instead of failing
	decoded, _ := xunicode.UTF8.NewDecoder().Bytes(b)

	var sb strings.Builder
	sb.Grow(len(decoded))
	for _, r := range string(decoded) {
		if unicode.IsControl(r) {
			fmt.Fprintf(&sb, `\u{%04x}`, r)
			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
