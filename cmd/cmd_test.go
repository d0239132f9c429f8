package cmd

import (
	"bytes"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicktok/quicktok/envconfig"
	"github.com/quicktok/quicktok/server"
	"github.com/quicktok/quicktok/tokenizer"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

// isolate clears settings that could leak in from the machine running the
// tests.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("QUICKTOK_CONFIG", "")
	t.Setenv("QUICKTOK_HOME", "")
	t.Setenv("QUICKTOK_HOST", "")
	t.Setenv("QUICKTOK_MODELS", "")
	envconfig.LoadConfig()
	t.Cleanup(envconfig.LoadConfig)
	return home
}

func writeCorpus(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "toy.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestTrainEncodeDecode(t *testing.T) {
	isolate(t)

	corpus := writeCorpus(t, "aaabdaaabac")
	model := filepath.Join(t.TempDir(), "nested", "toy.model")

	out, err := run(t, "", "train", corpus, "--model", model, "--vocab-size", "259", "--threads", "2", "--save-vocab")
	require.NoError(t, err)
	assert.Contains(t, out, "learned 3 merges from 11 B")
	assert.Contains(t, out, "wrote "+model)
	assert.Contains(t, out, "wrote "+vocabPath(model))

	_, err = os.Stat(vocabPath(model))
	require.NoError(t, err)

	out, err = run(t, "", "encode", "--model", model, "aaabdaaabac")
	require.NoError(t, err)
	assert.Equal(t, "258 100 258 97 99\n", out)

	out, err = run(t, "aaab\n", "encode", "--model", model)
	require.NoError(t, err)
	assert.Equal(t, "258\n", out)

	out, err = run(t, "", "decode", "--model", model, "258", "100", "258,97,99")
	require.NoError(t, err)
	assert.Equal(t, "aaabdaaabac\n", out)

	_, err = run(t, "", "decode", "--model", model, "999999")
	require.ErrorIs(t, err, tokenizer.ErrUnknownToken)

	_, err = run(t, "", "decode", "--model", model, "abc")
	require.ErrorContains(t, err, `invalid token id "abc"`)
}

func TestTrainMaxBytes(t *testing.T) {
	isolate(t)

	corpus := writeCorpus(t, "aaabdaaabac")
	model := filepath.Join(t.TempDir(), "toy.model")

	// "aaab" runs out of pairs after three merges
	_, err := run(t, "", "train", corpus, "--model", model, "--vocab-size", "260", "--max-bytes", "4")
	require.ErrorIs(t, err, tokenizer.ErrPrecondition)

	_, err = os.Stat(model)
	require.ErrorIs(t, err, os.ErrNotExist)

	out, err := run(t, "", "train", corpus, "--model", model, "--vocab-size", "259", "--max-bytes", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "from 4 B")
}

func TestTrainDefaultModelPath(t *testing.T) {
	isolate(t)

	models := filepath.Join(t.TempDir(), "models")
	t.Setenv("QUICKTOK_MODELS", models)
	envconfig.LoadConfig()

	corpus := writeCorpus(t, "aaabdaaabac")
	_, err := run(t, "", "train", corpus, "--vocab-size", "258")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(models, "toy.model"))
	require.NoError(t, err)
}

func TestTrainMissingCorpus(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "train", filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadCorpus(t *testing.T) {
	path := writeCorpus(t, "ab\xffcd")

	text, err := readCorpus(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "ab�cd", text)

	text, err = readCorpus(path, 2)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestInspect(t *testing.T) {
	isolate(t)

	tok := tokenizer.NewBasicTokenizer(1)
	require.NoError(t, tok.Train("aaabdaaabac", 259))
	require.NoError(t, tok.RegisterSpecial("<|endoftext|>", 300))

	model := filepath.Join(t.TempDir(), "toy.model")
	require.NoError(t, tok.Save(model, ""))

	out, err := run(t, "", "inspect", "--model", model)
	require.NoError(t, err)

	assert.Contains(t, out, "260 tokens, 3 merges, 1 special")
	for _, want := range []string{"TOKEN", "[aa]", "[ab]", "[aaab]", "SPECIAL", "<|endoftext|>"} {
		assert.Contains(t, out, want)
	}

	out, err = run(t, "", "inspect", "--model", model, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[aa]")
	assert.NotContains(t, out, "[aaab]")

	_, err = run(t, "", "inspect")
	require.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "config")
	require.NoError(t, err)
	assert.Equal(t, envconfig.GenerateExampleConfig(), out)

	t.Setenv("QUICKTOK_VOCAB_SIZE", "1024")
	envconfig.LoadConfig()

	out, err = run(t, "", "config", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "QUICKTOK_VOCAB_SIZE")
	assert.Contains(t, out, "1024")
}

func TestEncodeRequiresModelOrHost(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "encode", "hello")
	require.ErrorIs(t, err, errModelOrHost)
}

func TestTokenizeViaHost(t *testing.T) {
	isolate(t)
	gin.SetMode(gin.TestMode)

	tok := tokenizer.NewBasicTokenizer(1)
	require.NoError(t, tok.Train("aaabdaaabac", 259))

	h, err := server.New("toy.model", tok, []string{"http://localhost"}).GenerateRoutes()
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	defer srv.Close()

	out, err := run(t, "", "encode", "--host", srv.URL, "aaab", "aaab")
	require.NoError(t, err)
	assert.Equal(t, "258 32 258\n", out)

	out, err = run(t, "", "decode", "--host", srv.URL, "258", "32", "258")
	require.NoError(t, err)
	assert.Equal(t, "aaab aaab\n", out)

	_, err = run(t, "", "decode", "--host", srv.URL, "999999")
	require.ErrorContains(t, err, "404")
}

func TestLoadDotEnv(t *testing.T) {
	home := isolate(t)

	require.NoError(t, LoadDotEnv(), "missing file is not an error")

	dir := filepath.Join(home, ".quicktok")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUICKTOK_NUM_THREADS=3\nQUICKTOK_VOCAB_SIZE=999\n"), 0o644))

	t.Setenv("QUICKTOK_NUM_THREADS", "")
	require.NoError(t, os.Unsetenv("QUICKTOK_NUM_THREADS"))
	t.Setenv("QUICKTOK_VOCAB_SIZE", "300")

	require.NoError(t, LoadDotEnv())
	envconfig.LoadConfig()

	assert.Equal(t, 3, envconfig.NumThreads)
	assert.Equal(t, 300, envconfig.VocabSize, "existing variables win over the .env file")
}

func TestVocabPath(t *testing.T) {
	assert.Equal(t, filepath.Join("models", "enwik8.vocab"), vocabPath(filepath.Join("models", "enwik8.model")))
	assert.Equal(t, "noext.vocab", vocabPath("noext"))
}
