package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/llm-relay-bot/pkg/api/handler"
	"github.com/dskvich/llm-relay-bot/pkg/api/response"
	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/llm"
)

type fakeProvider struct {
	reply     string
	err       error
	streamed  int
	completed int
	lastReq   llm.Request
}

func (f *fakeProvider) GenerateReply(_ context.Context, req llm.Request) (string, error) {
	f.streamed++
	f.lastReq = req
	return f.reply, f.err
}

func (f *fakeProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	f.completed++
	f.lastReq = req
	return f.reply, f.err
}

func post(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reply", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestReplyStreamsByDefault(t *testing.T) {
	provider := &fakeProvider{reply: "**Hi** there"}
	srv := New(provider, prometheus.NewRegistry(), nil)

	rec := post(t, srv, `{"message":"  hello  "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ReplyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "**Hi** there", resp.Reply)
	assert.Equal(t, "<b>Hi</b> there", resp.HTML)
	assert.Equal(t, 1, provider.streamed)
	assert.Equal(t, "hello", provider.lastReq.Message)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestReplyWithoutStreaming(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	srv := New(provider, prometheus.NewRegistry(), nil)

	rec := post(t, srv, `{"message":"hello","stream":false,"image_urls":["data:image/png;base64,AA"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, provider.completed)
	assert.Zero(t, provider.streamed)
	assert.Equal(t, []string{"data:image/png;base64,AA"}, provider.lastReq.ImageURLs)
}

func TestReplyBadInput(t *testing.T) {
	srv := New(&fakeProvider{}, prometheus.NewRegistry(), nil)

	for _, body := range []string{`not json`, `{"message":"   "}`, `{}`} {
		rec := post(t, srv, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	}
}

func TestReplyModelFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", &domain.HTTPError{Status: 500, Body: "boom"}, http.StatusBadGateway},
		{"transport error", &domain.TransportError{Err: errors.New("refused")}, http.StatusBadGateway},
		{"other", errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&fakeProvider{err: tt.err}, prometheus.NewRegistry(), nil)

			rec := post(t, srv, `{"message":"hi"}`)

			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "relay_test_total"})
	reg.MustRegister(counter)
	counter.Inc()
	srv := New(&fakeProvider{}, reg, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relay_test_total 1")
}

func TestWebhookMount(t *testing.T) {
	called := false
	webhook := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	New(&fakeProvider{}, prometheus.NewRegistry(), webhook).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("{}")))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	New(&fakeProvider{}, prometheus.NewRegistry(), nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := New(&fakeProvider{}, prometheus.NewRegistry(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestStartStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(&fakeProvider{}, prometheus.NewRegistry(), nil).Start(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
