package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dskvich/llm-relay-bot/pkg/api/response"
	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/llm"
	"github.com/dskvich/llm-relay-bot/pkg/render"
)

const maxRequestBytes = 1 << 20

type ReplyProvider interface {
	GenerateReply(ctx context.Context, req llm.Request) (string, error)
	Complete(ctx context.Context, req llm.Request) (string, error)
}

type ReplyRequest struct {
	Message   string   `json:"message"`
	Stream    *bool    `json:"stream,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

type ReplyResponse struct {
	Reply string `json:"reply"`
	HTML  string `json:"html"`
}

type reply struct {
	provider ReplyProvider
	writer   response.JSONResponseWriter
}

func NewReply(provider ReplyProvider) *reply {
	return &reply{
		provider: provider,
		writer:   response.JSONResponseWriter{},
	}
}

// GenerateReply answers a single stateless prompt. Streaming is used unless the request opts out.
func (h *reply) GenerateReply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.writer.WriteErrorResponse(w, r, http.StatusBadRequest, "Request body must be a JSON object with a message.")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.writer.WriteErrorResponse(w, r, http.StatusBadRequest, domain.EmptyPromptText)
		return
	}

	llmReq := llm.Request{Message: message, ImageURLs: req.ImageURLs}

	var (
		text string
		err  error
	)
	if req.Stream == nil || *req.Stream {
		text, err = h.provider.GenerateReply(r.Context(), llmReq)
	} else {
		text, err = h.provider.Complete(r.Context(), llmReq)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if domain.IsModelFailure(err) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusBadGateway
		}
		h.writer.WriteErrorResponse(w, r, status, err.Error())
		return
	}

	h.writer.WriteSuccessResponse(w, r, ReplyResponse{
		Reply: text,
		HTML:  render.ToHTML(text),
	})
}
