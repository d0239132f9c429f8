package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quicktok/quicktok/api"
	"github.com/quicktok/quicktok/envconfig"
)

var errModelOrHost = errors.New("either --model or --host is required")

// newAPIClient returns a client for --host, falling back to QUICKTOK_HOST.
func newAPIClient(cmd *cobra.Command) (*api.Client, error) {
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return nil, err
	}

	if host == "" {
		if envconfig.Host == "" {
			return nil, errModelOrHost
		}

		if host, err = envconfig.HostPort(); err != nil {
			return nil, err
		}
	}

	return api.NewClient(host, nil)
}

func EncodeHandler(cmd *cobra.Command, args []string) error {
	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}

	special, err := cmd.Flags().GetBool("special")
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = strings.TrimSuffix(string(b), "\n")
	}

	var ids []int
	if model != "" {
		tok, err := loadTokenizer(model)
		if err != nil {
			return err
		}

		if special {
			ids = tok.EncodeSpecial(text)
		} else {
			ids = tok.Encode(text)
		}
	} else {
		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.Encode(cmd.Context(), &api.EncodeRequest{Text: text, Special: special})
		if err != nil {
			return err
		}
		ids = resp.IDs
	}

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = strconv.Itoa(id)
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fields, " "))
	return nil
}

func DecodeHandler(cmd *cobra.Command, args []string) error {
	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}

	var ids []int
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.Atoi(field)
			if err != nil || id < 0 {
				return fmt.Errorf("invalid token id %q", field)
			}
			ids = append(ids, id)
		}
	}

	var text string
	if model != "" {
		tok, err := loadTokenizer(model)
		if err != nil {
			return err
		}

		if text, err = tok.Decode(ids); err != nil {
			return err
		}
	} else {
		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		resp, err := client.Decode(cmd.Context(), &api.DecodeRequest{IDs: ids})
		if err != nil {
			return err
		}
		text = resp.Text
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
