package llm

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/sse"
)

// Stream is an open streaming completion. It must be closed.
type Stream struct {
	body   io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	mu        sync.Mutex
	consumed  bool
}

func newStream(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser) *Stream {
	return &Stream{body: body, ctx: ctx, cancel: cancel}
}

// Deltas yields text fragments in arrival order. It ends on [DONE] or when the
// server closes the connection. Read failures, including the request timeout,
// are yielded once as *domain.TransportError. The sequence cannot be restarted.
func (s *Stream) Deltas() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		if s.consumed {
			s.mu.Unlock()
			return
		}
		s.consumed = true
		s.mu.Unlock()

		for frame, err := range sse.Decode(s.body) {
			if err != nil {
				if ctxErr := s.ctx.Err(); ctxErr != nil {
					err = fmt.Errorf("%w: %w", ctxErr, err)
				}
				yield("", &domain.TransportError{Err: fmt.Errorf("reading stream: %w", err)})
				return
			}
			if frame.Kind == sse.FrameDone {
				return
			}
			if !yield(frame.Text, nil) {
				return
			}
		}
	}
}

// Close releases the connection. Closing while Deltas is being consumed makes
// the pending read fail promptly.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.body.Close()
	})
	return err
}

// Fold concatenates deltas in order. tap, when set, observes every growing
// prefix. On error the text accumulated so far is returned with it.
func Fold(deltas iter.Seq2[string, error], tap func(acc string)) (string, error) {
	var sb strings.Builder
	for delta, err := range deltas {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(delta)
		if tap != nil {
			tap(sb.String())
		}
	}
	return sb.String(), nil
}
