package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/quicktok/quicktok/format"
	"github.com/quicktok/quicktok/progress"
	"github.com/quicktok/quicktok/tokenizer"
)

func TrainHandler(cmd *cobra.Command, args []string) error {
	corpus := args[0]

	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}

	if model == "" {
		model = defaultModelPath(corpus)
	}

	vocabSize, err := cmd.Flags().GetInt("vocab-size")
	if err != nil {
		return err
	}

	threads, err := cmd.Flags().GetInt("threads")
	if err != nil {
		return err
	}

	maxBytes, err := cmd.Flags().GetInt64("max-bytes")
	if err != nil {
		return err
	}

	saveVocab, err := cmd.Flags().GetBool("save-vocab")
	if err != nil {
		return err
	}

	text, err := readCorpus(corpus, maxBytes)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(model), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	tok := tokenizer.NewBasicTokenizer(threads)

	var p *progress.Progress
	if isTerminal(cmd.ErrOrStderr()) {
		p = progress.NewProgress(cmd.ErrOrStderr())
		defer p.StopAndClear()

		bar := progress.NewBar(fmt.Sprintf("training on %s", format.HumanBytes(int64(len(text)))), "merges", vocabSize-256)
		p.Add(bar)
		tok.OnMerge(func(done, _ int) { bar.Set(done) })
	}

	slog.Info("training", "corpus", corpus, "bytes", len(text), "vocab_size", vocabSize, "threads", tok.NumThreads())

	start := time.Now()
	if err := tok.Train(text, vocabSize); err != nil {
		return err
	}
	elapsed := time.Since(start)

	var vocab string
	if saveVocab {
		vocab = vocabPath(model)
	}

	if p != nil {
		p.Add(progress.NewSpinner("writing " + model))
	}

	if err := tok.Save(model, vocab); err != nil {
		return err
	}

	if p != nil {
		p.StopAndClear()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "learned %s merges from %s in %s\n", format.HumanNumber(len(tok.Merges())), format.HumanBytes(int64(len(text))), format.Elapsed(elapsed))
	fmt.Fprintf(out, "wrote %s\n", model)
	if vocab != "" {
		fmt.Fprintf(out, "wrote %s\n", vocab)
	}

	return nil
}

// readCorpus reads at most maxBytes of path, or all of it when maxBytes is
// zero, replacing invalid UTF-8 with U+FFFD.
func readCorpus(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read corpus: %w", err)
	}

	b, err = xunicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode corpus: %w", err)
	}

	return string(b), nil
}
