package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ladespensa/despensa-api/internal/application/ports"
)

var _ ports.LLMService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	maxAnswerTokens      = 1024
	maxResponseBytes     = 64 << 10

	assistantPrompt = `Eres el asistente virtual de La Despensa, un almacén de abarrotes.
Respondes en español, en tono breve y práctico, preguntas sobre el inventario del almacén.
Usa ÚNICAMENTE los datos del inventario que se te entregan; si la respuesta no está en ellos, dilo.
Los montos están en pesos. No inventes productos, precios ni fechas.`
)

var errEmptyAnswer = errors.New("AI: el modelo devolvió una respuesta vacía")

// APIError error devuelto por la API de Messages con status distinto de 200.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("AI: Anthropic HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("AI: Anthropic %s (%d): %s", e.Type, e.Status, e.Message)
}

// AnthropicService implementa LLMService sobre la API REST de Messages.
type AnthropicService struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropicService sin apiKey las llamadas fallan con error, no con panic.
func NewAnthropicService(apiKey, model string, timeout time.Duration) *AnthropicService {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		url:    anthropicMessagesURL,
		client: &http.Client{Timeout: timeout},
	}
}

// WithURL cambia el endpoint (tests o proxy).
func (s *AnthropicService) WithURL(url string) *AnthropicService {
	s.url = url
	return s
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicReply struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *AnthropicService) Model() string { return s.model }

// Answer pregunta al modelo con el inventario como contexto.
func (s *AnthropicService) Answer(ctx context.Context, query, snapshot string) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("AI: ANTHROPIC_API_KEY no configurado")
	}
	reply, err := s.post(ctx, anthropicRequest{
		Model:     s.model,
		MaxTokens: maxAnswerTokens,
		System:    assistantPrompt,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: "Inventario actual:\n" + snapshot + "\n\nPregunta: " + query,
		}},
	})
	if err != nil {
		return "", err
	}
	return reply.text()
}

func (s *AnthropicService) post(ctx context.Context, payload anthropicRequest) (*anthropicReply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: codificar solicitud: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: solicitud: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("AI: %w", ctxErr)
		}
		return nil, fmt.Errorf("AI: llamada a Anthropic: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}
	var reply anthropicReply
	decodeErr := json.Unmarshal(raw, &reply)
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && reply.Error != nil {
			apiErr.Type, apiErr.Message = reply.Error.Type, reply.Error.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("AI: decodificar respuesta: %w", decodeErr)
	}
	return &reply, nil
}

// text concatena los bloques de texto; ignora los de otro tipo.
func (r *anthropicReply) text() (string, error) {
	var sb strings.Builder
	for _, b := range r.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", errEmptyAnswer
	}
	return answer, nil
}
