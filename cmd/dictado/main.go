// Dictado interprets short Spanish voice or text commands into structured
// expense, income, task and reminder actions.
//
// Usage:
//
//	dictado serve [--config /path/to/dictado.yaml]
//	dictado process "agregar gasto variable 50000 en comida"
//	dictado vocabulary
//	dictado version
//
// @title       dictado API
// @version     1.0.0
// @description Interprets short Spanish voice or text commands into expense, income, task and reminder actions.
// @BasePath    /
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // scratch images ship without a zoneinfo database

	"github.com/spf13/cobra"

	"github.com/nadzzz/dictado/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "dictado",
		Short: "Voice command interpreter for personal finance and tasks",
		Long: `dictado turns short Spanish commands ("agregar gasto variable 50000 en comida",
"nueva tarea comprar pan mañana") into structured actions.

Run "dictado serve" for the WebSocket/HTTP/gRPC daemon or "dictado process" to
interpret a single command from the shell.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to config file (e.g. configs/dictado.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, text)")

	load := func() (*config.Config, error) {
		return config.Load(configFile,
			config.FlagBinding{Key: "logging.level", Flag: flags.Lookup("log-level")},
			config.FlagBinding{Key: "logging.format", Flag: flags.Lookup("log-format")},
		)
	}

	root.AddCommand(
		serveCmd(load),
		processCmd(load),
		vocabularyCmd(),
		versionCmd(),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dictado %s\n", version)
		},
	}
}
