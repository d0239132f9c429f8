package cmd

import (
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/quicktok/quicktok/envconfig"
	"github.com/quicktok/quicktok/server"
)

func ServeHandler(cmd *cobra.Command, _ []string) error {
	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}

	tok, err := loadTokenizer(model)
	if err != nil {
		return err
	}

	addr, err := envconfig.HostPort()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	if envconfig.LogLevel <= slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, ln, server.New(model, tok, envconfig.AllowOrigins))
}
