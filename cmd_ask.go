package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/llm"
)

const askLongDesc string = `Send one prompt to the model and print the answer.

The answer is streamed as it is generated unless --no-stream is given.

Examples:
  relay ask "What is a goroutine?"
  relay ask --no-stream --image data:image/png;base64,... "Describe this"`

type replier interface {
	StreamReply(ctx context.Context, req llm.Request) (*llm.Stream, error)
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type askCommander struct {
	root      *rootCommander
	noStream  bool
	imageURLs []string
}

func newAskCmd(root *rootCommander) *cobra.Command {
	cmder := &askCommander{root: root}

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the model a single question",
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.newLLMClient()
			if err != nil {
				return fmt.Errorf("creating llm client: %w", err)
			}
			return cmder.run(cmd.Context(), client, cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the complete answer instead of streaming")
	cmd.Flags().StringArrayVar(&cmder.imageURLs, "image", nil, "Image URL or data URL to attach (repeatable)")

	return cmd
}

func (c *askCommander) run(ctx context.Context, client replier, out io.Writer, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return errors.New(domain.EmptyPromptText)
	}
	req := llm.Request{Message: prompt, ImageURLs: c.imageURLs}

	if c.noStream {
		text, err := client.Complete(ctx, req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	stream, err := client.StreamReply(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	written := 0
	for delta, err := range stream.Deltas() {
		if err != nil {
			return err
		}
		n, err := io.WriteString(out, delta)
		if err != nil {
			return fmt.Errorf("writing answer: %w", err)
		}
		written += n
	}

	if written == 0 {
		_, err = fmt.Fprintln(out, domain.EmptyContentText)
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
