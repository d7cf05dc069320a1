package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dskvich/llm-relay-bot/pkg/config"
	"github.com/dskvich/llm-relay-bot/pkg/llm"
	"github.com/dskvich/llm-relay-bot/pkg/logger"
)

const rootLongDesc string = `Relay chat messages to a local OpenAI-compatible language model.

The serve command runs the Telegram bot and the HTTP API. The ask command
sends a single prompt and streams the answer to stdout.

Configuration is read from defaults, then the YAML file given by --config,
then environment variables (LLM_*, SERVER_*, TELEGRAM_*, HISTORY_*, LOG_*).
Copy config.example.yaml to config.yaml to start from the documented
settings; when the file is missing the defaults are used.`

type rootCommander struct {
	configPath string
	cfg        *config.Config
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
}

func runMain() error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Relay chat messages to a local language model",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&cmder.configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	cmd.AddCommand(newServeCmd(cmder), newAskCmd(cmder))

	return cmd
}

func (c *rootCommander) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	opts := *logger.DefaultOptions
	opts.Level = logger.ParseLevel(cfg.Log.Level)
	opts.NoColor = cfg.Log.NoColor
	slog.SetDefault(slog.New(logger.NewHandler(cmd.ErrOrStderr(), &opts)))

	slog.Debug("config loaded", "path", c.configPath, "model", cfg.LLM.Model, "endpoint", cfg.LLM.BaseURL+cfg.LLM.ChatPath)
	return nil
}

func (c *rootCommander) newLLMClient() (*llm.Client, error) {
	return llm.NewClient(llm.Config{
		BaseURL:        c.cfg.LLM.BaseURL,
		ChatPath:       c.cfg.LLM.ChatPath,
		Model:          c.cfg.LLM.Model,
		SystemPrompt:   c.cfg.LLM.SystemPrompt,
		SupportsVision: c.cfg.LLM.SupportsVision,
		APIKey:         c.cfg.LLM.APIKey,
		Timeout:        c.cfg.LLM.Timeout,
	})
}
