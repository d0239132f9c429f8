package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quicktok/quicktok/format"
)

func InspectHandler(cmd *cobra.Command, args []string) error {
	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	tok, err := loadTokenizer(model)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	merges := tok.Merges()
	fmt.Fprintf(out, "%s: %s tokens, %s merges, %d special\n\n", model, format.HumanNumber(tok.VocabSize()), format.HumanNumber(len(merges)), len(tok.SpecialTokens()))

	if limit > 0 && limit < len(merges) {
		merges = merges[:limit]
	}

	var data [][]string
	for _, rule := range merges {
		token, _ := tok.Render(rule.ID)
		data = append(data, []string{
			strconv.Itoa(rule.ID),
			strconv.Itoa(rule.Pair.Left),
			strconv.Itoa(rule.Pair.Right),
			"[" + token + "]",
		})
	}

	table := newTable(out, []string{"ID", "LEFT", "RIGHT", "TOKEN"})
	table.AppendBulk(data)
	table.Render()

	if specials := tok.SpecialTokens(); len(specials) > 0 {
		fmt.Fprintln(out)

		data = nil
		for _, special := range specials {
			data = append(data, []string{strconv.Itoa(special.ID), special.Literal})
		}

		table := newTable(out, []string{"ID", "SPECIAL"})
		table.AppendBulk(data)
		table.Render()
	}

	return nil
}
