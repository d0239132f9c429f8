package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quicktok/quicktok/envconfig"
	"github.com/quicktok/quicktok/logutil"
	"github.com/quicktok/quicktok/progress"
	"github.com/quicktok/quicktok/tokenizer"
	"github.com/quicktok/quicktok/version"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "quicktok",
		Short:   "Byte-level BPE tokenizer",
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
			logutil.Init(cmd.ErrOrStderr(), envconfig.LogLevel)
		},
	}

	cobra.EnableCommandSorting = false

	trainCmd := &cobra.Command{
		Use:   "train CORPUS",
		Short: "Learn a merge table from a text corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  TrainHandler,
	}

	trainCmd.Flags().StringP("model", "m", "", "Model file to write (default <models>/<corpus>.model)")
	trainCmd.Flags().Int("vocab-size", envconfig.VocabSize, "Vocabulary size including the 256 byte tokens")
	trainCmd.Flags().IntP("threads", "t", envconfig.NumThreads, "Goroutines used to count pairs")
	trainCmd.Flags().Int64("max-bytes", 0, "Train on at most this many bytes of the corpus (0 for all)")
	trainCmd.Flags().Bool("save-vocab", false, "Also write a human readable .vocab file next to the model")

	encodeCmd := &cobra.Command{
		Use:   "encode [TEXT...]",
		Short: "Encode text to token ids",
		Long:  "Encode text to token ids. Text is read from stdin when no arguments are given.",
		RunE:  EncodeHandler,
	}

	encodeCmd.Flags().Bool("special", false, "Recognize special token literals in the text")

	decodeCmd := &cobra.Command{
		Use:   "decode ID...",
		Short: "Decode token ids to text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  DecodeHandler,
	}

	for _, cmd := range []*cobra.Command{encodeCmd, decodeCmd} {
		cmd.Flags().StringP("model", "m", "", "Model file to load")
		cmd.Flags().String("host", "", "Use a running quicktok server instead of a model file (default QUICKTOK_HOST)")
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the merges and special tokens of a model",
		Args:  cobra.NoArgs,
		RunE:  InspectHandler,
	}

	inspectCmd.Flags().StringP("model", "m", "", "Model file to load")
	inspectCmd.Flags().Int("limit", 0, "Show at most this many merges (0 for all)")
	_ = inspectCmd.MarkFlagRequired("model")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve a model over HTTP",
		Args:    cobra.NoArgs,
		RunE:    ServeHandler,
	}

	serveCmd.Flags().StringP("model", "m", "", "Model file to load")
	_ = serveCmd.MarkFlagRequired("model")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print an example configuration file",
		Args:  cobra.NoArgs,
		RunE:  ConfigHandler,
	}

	configCmd.Flags().Bool("show", false, "Show the effective settings instead")

	envVars := envconfig.AsMap()
	for _, cmd := range []*cobra.Command{trainCmd, serveCmd} {
		appendEnvDocs(cmd, []envconfig.EnvVar{
			envVars["QUICKTOK_DEBUG"],
			envVars["QUICKTOK_NUM_THREADS"],
			envVars["QUICKTOK_VOCAB_SIZE"],
			envVars["QUICKTOK_MODELS"],
			envVars["QUICKTOK_HOST"],
			envVars["QUICKTOK_ORIGINS"],
		})
	}

	rootCmd.AddCommand(
		trainCmd,
		encodeCmd,
		decodeCmd,
		inspectCmd,
		serveCmd,
		configCmd,
	)

	return rootCmd
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("\nEnvironment Variables:\n")
	for _, e := range envs {
		fmt.Fprintf(&sb, "      %-22s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + sb.String())
}

func loadTokenizer(path string) (*tokenizer.BasicTokenizer, error) {
	tok := tokenizer.NewBasicTokenizer(envconfig.NumThreads)
	if err := tok.Load(path); err != nil {
		return nil, err
	}

	return tok, nil
}

// defaultModelPath names the model after the corpus inside the models
// directory.
func defaultModelPath(corpus string) string {
	name := strings.TrimSuffix(filepath.Base(corpus), filepath.Ext(corpus))
	return filepath.Join(envconfig.Models, name+".model")
}

// vocabPath returns the .vocab sibling of a model file.
func vocabPath(model string) string {
	return strings.TrimSuffix(model, filepath.Ext(model)) + ".vocab"
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && progress.IsTerminal(f)
}

// newTable returns a borderless, left aligned table in the style of the
// other listing commands.
func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}
