package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/quicktok/quicktok/cmd"
	"github.com/quicktok/quicktok/envconfig"
)

func main() {
	if err := cmd.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	// pick up anything the .env file set
	envconfig.LoadConfig()

	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
