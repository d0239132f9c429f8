package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/quicktok/quicktok/envconfig"
)

func ConfigHandler(cmd *cobra.Command, _ []string) error {
	show, err := cmd.Flags().GetBool("show")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !show {
		fmt.Fprint(out, envconfig.GenerateExampleConfig())
		return nil
	}

	values := envconfig.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var data [][]string
	for _, k := range keys {
		data = append(data, []string{k, values[k]})
	}

	table := newTable(out, []string{"NAME", "VALUE"})
	table.AppendBulk(data)
	table.Render()

	if paths := envconfig.GetConfigPaths(); len(paths) > 0 {
		fmt.Fprintf(out, "\nconfig files searched: %v\n", paths)
	}

	return nil
}
