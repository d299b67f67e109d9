package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer_OK(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "clave", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Quedan 12 unidades de arroz."}]}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("clave", "claude-test", time.Second).WithURL(srv.URL)
	answer, err := svc.Answer(context.Background(), "¿cuánto arroz queda?", "- Arroz | stock 12")
	require.NoError(t, err)
	assert.Equal(t, "Quedan 12 unidades de arroz.", answer)
	assert.Equal(t, "claude-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "- Arroz | stock 12")
	assert.Contains(t, got.Messages[0].Content, "¿cuánto arroz queda?")
}

func TestAnswer_ErrorDeAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicService("clave", "m", time.Second).WithURL(srv.URL).Answer(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestAnswer_RespuestaVacia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use","text":"x"},{"type":"text","text":"  "}]}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicService("clave", "m", time.Second).WithURL(srv.URL).Answer(context.Background(), "q", "")
	assert.ErrorIs(t, err, errEmptyAnswer)
}

func TestAnswer_SinAPIKey(t *testing.T) {
	_, err := NewAnthropicService("", "m", 0).Answer(context.Background(), "q", "")
	assert.Error(t, err)
}

func TestAnswer_ContextoCancelado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewAnthropicService("clave", "m", time.Second).WithURL(srv.URL).Answer(ctx, "q", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
