package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ModelVersion is the first line of every model file.
const ModelVersion = "quicktok v1"

// maxLineSize bounds a single model file line, which in practice only the
// pattern line approaches.
const maxLineSize = 1 << 20

type modelFile struct {
	pattern  string
	specials []SpecialToken
	merges   []Pair
}

// Load replaces the tokenizer state with the model stored at path. Merge ids
// are assigned from 256 in file order and the vocabulary is rebuilt.
func (t *BasicTokenizer) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	m, err := readModel(f, path)
	if err != nil {
		return err
	}

	ranks := make(map[Pair]int, len(m.merges))
	for i, p := range m.merges {
		ranks[p] = baseVocabSize + i
	}

	t.pattern = m.pattern
	t.merges = m.merges
	t.ranks = ranks
	t.specials = m.specials
	t.vocab = buildVocabulary(m.merges, m.specials)

	slog.Debug("loaded tokenizer", "path", path, "merges", len(m.merges), "specials", len(m.specials), "vocab", len(t.vocab))
	return nil
}

func readModel(r io.Reader, path string) (*modelFile, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var n int
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}

		n++
		return strings.TrimSuffix(sc.Text(), "\r"), true
	}

	invalid := func(format string, args ...any) error {
		return &InvalidDataError{Path: path, Line: n, Reason: fmt.Sprintf(format, args...)}
	}

	readErr := func() error {
		if err := sc.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return &InvalidDataError{Path: path, Line: n + 1, Reason: "line too long"}
			}

			return &IOError{Op: "read", Path: path, Err: err}
		}

		return nil
	}

	version, ok := next()
	if !ok {
		if err := readErr(); err != nil {
			return nil, err
		}

		return nil, &InvalidDataError{Path: path, Reason: "missing version"}
	}

	if version != ModelVersion {
		return nil, invalid("unsupported version %q, want %q", version, ModelVersion)
	}

	var m modelFile
	if m.pattern, ok = next(); !ok {
		if err := readErr(); err != nil {
			return nil, err
		}

		return nil, &InvalidDataError{Path: path, Reason: "missing pattern"}
	}

	line, ok := next()
	if !ok {
		if err := readErr(); err != nil {
			return nil, err
		}

		return nil, &InvalidDataError{Path: path, Reason: "missing special token count"}
	}

	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || count < 0 {
		return nil, invalid("invalid special token count %q", line)
	}

	m.specials = make([]SpecialToken, 0, count)
	for range count {
		line, ok := next()
		if !ok {
			if err := readErr(); err != nil {
				return nil, err
			}

			return nil, &InvalidDataError{Path: path, Reason: fmt.Sprintf("expected %d special tokens, got %d", count, len(m.specials))}
		}

		// literals may contain spaces, the id is always last
		i := strings.LastIndexByte(line, ' ')
		if i < 0 {
			return nil, invalid("malformed special token %q", line)
		}

		id, err := parseID(line[i+1:])
		if err != nil {
			return nil, invalid("malformed special token %q: %v", line, err)
		}

		m.specials = append(m.specials, SpecialToken{Literal: line[:i], ID: id})
	}

	seen := make(map[Pair]int)
	for {
		line, ok := next()
		if !ok {
			break
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, invalid("malformed merge %q", line)
		}

		left, err := parseID(fields[0])
		if err != nil {
			return nil, invalid("malformed merge %q: %v", line, err)
		}

		right, err := parseID(fields[1])
		if err != nil {
			return nil, invalid("malformed merge %q: %v", line, err)
		}

		// children must already exist for the vocabulary to be derivable
		id := baseVocabSize + len(m.merges)
		if left >= id || right >= id {
			return nil, invalid("merge %q references ids not below %d", line, id)
		}

		p := Pair{Left: left, Right: right}
		if prev, ok := seen[p]; ok {
			return nil, invalid("merge %q repeats merge %d", line, prev)
		}

		seen[p] = id
		m.merges = append(m.merges, p)
	}

	if err := readErr(); err != nil {
		return nil, err
	}

	if err := validateSpecials(m.specials, len(m.merges)); err != nil {
		return nil, &InvalidDataError{Path: path, Reason: err.Error()}
	}

	sortSpecials(m.specials)
	return &m, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	if id < 0 {
		return 0, fmt.Errorf("negative id %d", id)
	}

	return id, nil
}

// Save writes the model to modelPath and, when vocabPath is not empty, a
// human-readable vocabulary to vocabPath. The two writes are independent: a
// failure writing the vocabulary leaves a complete model file behind.
func (t *BasicTokenizer) Save(modelPath, vocabPath string) error {
	if err := writeFile(modelPath, t.writeModel); err != nil {
		return err
	}

	slog.Debug("saved model", "path", modelPath, "merges", len(t.merges), "specials", len(t.specials))

	if vocabPath == "" {
		return nil
	}

	if err := writeFile(vocabPath, t.writeVocab); err != nil {
		return err
	}

	slog.Debug("saved vocabulary", "path", vocabPath, "tokens", len(t.vocab))
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	if err := w.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}

	return nil
}

func (t *BasicTokenizer) writeModel(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n%d\n", ModelVersion, t.pattern, len(t.specials)); err != nil {
		return err
	}

	for _, s := range t.specials {
		if _, err := fmt.Fprintf(w, "%s %d\n", s.Literal, s.ID); err != nil {
			return err
		}
	}

	for _, p := range t.merges {
		if _, err := fmt.Fprintf(w, "%d %d\n", p.Left, p.Right); err != nil {
			return err
		}
	}

	return nil
}

// writeVocab writes one line per id in ascending order. Merged tokens show
// their children: "[left][right] -> [token] id"; all others "[token] id".
func (t *BasicTokenizer) writeVocab(w io.Writer) error {
	for _, id := range t.vocab.IDs() {
		token := render(t.vocab[id])

		var err error
		if i := id - baseVocabSize; i >= 0 && i < len(t.merges) {
			p := t.merges[i]
			_, err = fmt.Fprintf(w, "[%s][%s] -> [%s] %d\n", render(t.vocab[p.Left]), render(t.vocab[p.Right]), token, id)
		} else {
			_, err = fmt.Fprintf(w, "[%s] %d\n", token, id)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
