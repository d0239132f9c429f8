package tokenizer

import (
	"cmp"
	"slices"
	"strings"
)

// fragment is a piece of input text. Special tokens carry their id; ordinary
// text has none and still needs encoding.
type fragment struct {
	value string
	id    int
	ok    bool
}

func sortSpecials(specials []SpecialToken) {
	slices.SortFunc(specials, func(a, b SpecialToken) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// splitSpecialTokens splits s into fragments, extracting special tokens.
// Specials are processed in id order, so at overlapping positions the token
// with the smaller id wins.
func splitSpecialTokens(s string, specials []SpecialToken) []fragment {
	fragments := []fragment{{value: s}}
	for _, special := range specials {
		if !strings.Contains(s, special.Literal) {
			continue
		}

		for i := 0; i < len(fragments); i++ {
			frag := fragments[i]
			if frag.ok {
				continue
			}

			var middle []fragment
			switch idx := strings.Index(frag.value, special.Literal); {
			case idx < 0:
				middle = append(middle, frag)
			case idx > 0:
				middle = append(middle, fragment{value: frag.value[:idx]})
				fallthrough
			default:
				middle = append(middle, fragment{value: special.Literal, id: special.ID, ok: true})
				if rest := frag.value[idx+len(special.Literal):]; rest != "" {
					middle = append(middle, fragment{value: rest})
				}
			}

			fragments = slices.Replace(fragments, i, i+1, middle...)
		}
	}

	return fragments
}

// EncodeSpecial is like Encode but first extracts registered special token
// literals from text and emits their ids in place.
func (t *BasicTokenizer) EncodeSpecial(text string) []int {
	if len(t.specials) == 0 {
		return t.Encode(text)
	}

	var ids []int
	for _, frag := range splitSpecialTokens(text, t.specials) {
		if frag.ok {
			ids = append(ids, frag.id)
			continue
		}

		ids = append(ids, t.Encode(frag.value)...)
	}

	return ids
}
