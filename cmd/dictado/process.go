package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/dictado/internal/config"
	"github.com/nadzzz/dictado/internal/message"
	grpctransport "github.com/nadzzz/dictado/internal/transport/grpc"
)

func processCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		audioFile string
		remote    string
	)

	cmd := &cobra.Command{
		Use:   "process [text...]",
		Short: "Interpret one command and print the action as JSON",
		Long: `Interpret one command and print the resulting action as JSON.

The command is read from the arguments, or transcribed from --audio using the
configured transcriber. With --remote the command is sent to a running daemon
over gRPC instead of being interpreted in-process.`,
		Example: `  dictado process agregar gasto variable 50000 en comida
  dictado process --audio nota.wav
  dictado process --remote localhost:50051 nueva tarea comprar pan mañana`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" && audioFile == "" {
				return errors.New("nothing to process: pass a command or --audio")
			}

			cfg, err := load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			config.SetupLoggingTo(cfg.Logging, cmd.ErrOrStderr())

			var (
				audio       []byte
				contentType string
			)
			if audioFile != "" {
				audio, err = os.ReadFile(audioFile)
				if err != nil {
					return fmt.Errorf("reading audio: %w", err)
				}
				contentType = mime.TypeByExtension(filepath.Ext(audioFile))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if remote != "" {
				msg := &message.Message{Type: message.CommandTypeText, Text: text, Source: "cli"}
				if audio != nil {
					msg = &message.Message{Type: message.CommandTypeAudio, Audio: audio, ContentType: contentType, Source: "cli"}
				}
				client, err := grpctransport.NewClient(remote)
				if err != nil {
					return err
				}
				defer client.Close()

				resp, err := client.Process(cmd.Context(), msg)
				if err != nil {
					return fmt.Errorf("remote process: %w", err)
				}
				return enc.Encode(resp)
			}

			proc, tr, err := newProcessor(cfg)
			if err != nil {
				return err
			}
			if tr != nil {
				defer tr.Close()
			}

			var result message.Result
			if audio != nil {
				ctx := cmd.Context()
				if cfg.Transcriber.Timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, cfg.Transcriber.Timeout)
					defer cancel()
				}
				result = proc.ProcessAudio(ctx, audio, contentType)
			} else {
				result = proc.ProcessText(text)
			}
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&audioFile, "audio", "", "audio file to transcribe and interpret")
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC address of a running daemon (host:port)")
	return cmd
}
