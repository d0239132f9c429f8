// Package tokenizer implements a byte-level byte-pair encoding tokenizer:
// training a merge table from raw text, encoding text to token ids, rendering
// ids back to text and persisting the model.
package tokenizer

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"

	"github.com/quicktok/quicktok/format"
	"github.com/quicktok/quicktok/logutil"
)

// Tokenizer is the set of operations exposed to callers and binding layers.
type Tokenizer interface {
	Train(text string, vocabSize int) error
	Encode(text string) []int
	Decode(ids []int) (string, error)
	Load(path string) error
	Save(modelPath, vocabPath string) error
}

// MergeRule is a learned merge: Pair is replaced by ID.
type MergeRule struct {
	Pair Pair
	ID   int
}

// BasicTokenizer learns merges directly over the UTF-8 bytes of its input
// without any pre-tokenization.
//
// A BasicTokenizer is not safe for concurrent use while Train, Load or
// RegisterSpecial are running. Encode and Decode only read state.
type BasicTokenizer struct {
	numThreads int

	// called after each learned merge, from the training goroutine
	onMerge func(done, total int)

	pattern string

	// merges[i] is replaced by baseVocabSize+i
	merges []Pair
	ranks  map[Pair]int

	// sorted by id
	specials []SpecialToken

	vocab Vocabulary
}

var _ Tokenizer = (*BasicTokenizer)(nil)

// NewBasicTokenizer returns an untrained tokenizer. Training counts pairs on
// numThreads goroutines; values below one are treated as one.
func NewBasicTokenizer(numThreads int) *BasicTokenizer {
	return &BasicTokenizer{
		numThreads: max(numThreads, 1),
		ranks:      make(map[Pair]int),
		vocab:      buildVocabulary(nil, nil),
	}
}

func (t *BasicTokenizer) NumThreads() int {
	return t.numThreads
}

// OnMerge registers fn to be called after every merge Train learns. A nil fn
// removes the callback.
func (t *BasicTokenizer) OnMerge(fn func(done, total int)) {
	t.onMerge = fn
}

// Train replaces any existing state with vocabSize-256 merges learned from
// text. It fails without modifying t when vocabSize is below 256 or when text
// runs out of pairs before enough merges are learned.
func (t *BasicTokenizer) Train(text string, vocabSize int) error {
	if vocabSize < baseVocabSize {
		return &PreconditionError{Reason: fmt.Sprintf("vocab size %d is below the minimum of %d", vocabSize, baseVocabSize)}
	}

	start := time.Now()
	numMerges := vocabSize - baseVocabSize
	ids := byteIDs(text)

	merges := make([]Pair, 0, numMerges)
	ranks := make(map[Pair]int, numMerges)
	vocab := buildVocabulary(nil, nil)

	for i := range numMerges {
		if len(ids) < 2 {
			return &PreconditionError{Reason: fmt.Sprintf("text too short: no pairs left after %d of %d merges", i, numMerges)}
		}

		pair, count, _ := MostCommon(t.countPairs(ids))
		id := baseVocabSize + i

		merges = append(merges, pair)
		ranks[pair] = id
		ids = Merge(ids, pair, id)
		vocab.extend(id, pair)

		logutil.Trace("merged pair", "id", id, "left", pair.Left, "right", pair.Right, "count", count, "token", lazyRender{vocab[id]}, "length", len(ids))
		if t.onMerge != nil {
			t.onMerge(i+1, numMerges)
		}
	}

	t.pattern = ""
	t.merges = merges
	t.ranks = ranks
	t.specials = nil
	t.vocab = vocab

	slog.Debug("trained tokenizer", "merges", numMerges, "threads", t.numThreads, "bytes", len(text), "tokens", len(ids), "ratio", format.Ratio(len(text), len(ids)), "elapsed", time.Since(start))
	return nil
}

func (t *BasicTokenizer) countPairs(ids []int) map[Pair]int {
	if t.numThreads == 1 {
		return CountPairs(ids)
	}

	return CountPairsParallel(ids, t.numThreads)
}

// Encode converts text to token ids by repeatedly applying the earliest
// learned merge present in the sequence until none applies.
func (t *BasicTokenizer) Encode(text string) []int {
	ids := byteIDs(text)
	for len(ids) >= 2 {
		rule, ok := t.nextMerge(ids)
		if !ok {
			break
		}

		ids = Merge(ids, rule.Pair, rule.ID)
	}

	logutil.Trace("encoded", "text", text, "ids", lazyIDs{ids})
	return ids
}

// nextMerge returns the highest priority merge rule whose pair occurs in ids.
func (t *BasicTokenizer) nextMerge(ids []int) (MergeRule, bool) {
	candidates := heap.NewWith(func(a, b MergeRule) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for p := range CountPairs(ids) {
		if id, ok := t.ranks[p]; ok {
			candidates.Push(MergeRule{Pair: p, ID: id})
		}
	}

	return candidates.Pop()
}

// Decode renders the bytes of each id separately and joins the results. A
// character whose bytes span two tokens becomes U+FFFD on both sides and
// control characters are escaped, so Decode is not a byte-exact inverse of
// Encode.
func (t *BasicTokenizer) Decode(ids []int) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		token, ok := t.vocab[id]
		if !ok {
			return "", &UnknownTokenError{ID: id}
		}

		sb.WriteString(render(token))
	}

	text := sb.String()
	logutil.Trace("decoded", "text", text, "ids", lazyIDs{ids})
	return text, nil
}

// RegisterSpecial binds literal to id. The id must not be a byte or merge id
// and neither the literal nor the id may already be registered.
func (t *BasicTokenizer) RegisterSpecial(literal string, id int) error {
	specials := append(slices.Clone(t.specials), SpecialToken{Literal: literal, ID: id})
	if err := validateSpecials(specials, len(t.merges)); err != nil {
		return &PreconditionError{Reason: err.Error()}
	}

	sortSpecials(specials)
	t.specials = specials
	t.vocab[id] = []byte(literal)
	return nil
}

func validateSpecials(specials []SpecialToken, numMerges int) error {
	ids := make(map[int]string, len(specials))
	literals := make(map[string]int, len(specials))
	for _, s := range specials {
		switch {
		case s.Literal == "":
			return fmt.Errorf("special token with id %d has an empty literal", s.ID)
		case strings.ContainsAny(s.Literal, "\r\n"):
			return fmt.Errorf("special token %q contains a line break", s.Literal)
		case s.ID < baseVocabSize+numMerges:
			return fmt.Errorf("special token %q id %d collides with byte or merge ids below %d", s.Literal, s.ID, baseVocabSize+numMerges)
		}

		if other, ok := ids[s.ID]; ok {
			return fmt.Errorf("special tokens %q and %q share id %d", other, s.Literal, s.ID)
		}

		if other, ok := literals[s.Literal]; ok {
			return fmt.Errorf("special token %q is bound to ids %d and %d", s.Literal, other, s.ID)
		}

		ids[s.ID] = s.Literal
		literals[s.Literal] = s.ID
	}

	return nil
}

// VocabSize returns the number of ids known to the vocabulary.
func (t *BasicTokenizer) VocabSize() int {
	return len(t.vocab)
}

// Merges returns the merge rules in priority order.
func (t *BasicTokenizer) Merges() []MergeRule {
	rules := make([]MergeRule, len(t.merges))
	for i, p := range t.merges {
		rules[i] = MergeRule{Pair: p, ID: baseVocabSize + i}
	}

	return rules
}

// SpecialTokens returns the special tokens sorted by id.
func (t *BasicTokenizer) SpecialTokens() []SpecialToken {
	return slices.Clone(t.specials)
}

func (t *BasicTokenizer) Pattern() string {
	return t.pattern
}

// TokenBytes returns the raw bytes id expands to.
func (t *BasicTokenizer) TokenBytes(id int) ([]byte, bool) {
	b, ok := t.vocab[id]
	return slices.Clone(b), ok
}

// Render returns the human-readable form of a single id.
func (t *BasicTokenizer) Render(id int) (string, bool) {
	return t.vocab.Render(id)
}

func byteIDs(text string) []int {
	ids := make([]int, len(text))
	for i := range len(text) {
		ids[i] = int(text[i])
	}

	return ids
}

type lazyIDs struct {
	ids []int
}

func (l lazyIDs) LogValue() slog.Value {
	return slog.AnyValue(fmt.Sprint(l.ids))
}

type lazyRender struct {
	b []byte
}

func (l lazyRender) LogValue() slog.Value {
	return slog.StringValue(render(l.b))
}
