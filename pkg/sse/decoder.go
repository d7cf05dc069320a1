// Package sse decodes OpenAI-style server-sent-event streams into text deltas.
//
// The decoder is permissive: blank lines, comments, keep-alives and frames that
// are not valid JSON are dropped without failing the stream.
package sse

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"strings"
)

type FrameKind int

const (
	FrameDelta FrameKind = iota + 1
	FrameDone
)

type Frame struct {
	Kind FrameKind
	Text string
}

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseLine turns one raw line into a frame. The boolean is false when the
// line carries nothing worth surfacing.
func ParseLine(line string) (Frame, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || !strings.HasPrefix(line, dataPrefix) {
		return Frame{}, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneMarker {
		return Frame{Kind: FrameDone}, true
	}

	var c chunk
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Frame{}, false
	}
	if len(c.Choices) == 0 || c.Choices[0].Delta.Content == "" {
		return Frame{}, false
	}

	return Frame{Kind: FrameDelta, Text: c.Choices[0].Delta.Content}, true
}

// Lines decodes an in-memory sequence of lines. The sequence ends after the
// Done frame without pulling further lines.
func Lines(lines iter.Seq[string]) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for line := range lines {
			frame, ok := ParseLine(line)
			if !ok {
				continue
			}
			if !yield(frame) || frame.Kind == FrameDone {
				return
			}
		}
	}
}

// Decode reads newline-terminated lines from r and yields frames. A read error
// other than io.EOF is yielded once and ends the sequence.
func Decode(r io.Reader) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		var readErr error
		br := bufio.NewReader(r)
		raw := func(yieldLine func(string) bool) {
			for {
				line, err := br.ReadString('\n')
				if line != "" && !yieldLine(line) {
					return
				}
				if err != nil {
					if !errors.Is(err, io.EOF) {
						readErr = err
					}
					return
				}
			}
		}

		for frame := range Lines(raw) {
			if !yield(frame, nil) {
				return
			}
		}
		if readErr != nil {
			yield(Frame{}, readErr)
		}
	}
}
