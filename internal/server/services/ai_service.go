package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// AIService stands in for the upstream model providers. Completions echo the
// last user message.
type AIService struct {
	models map[string][]string
}

func NewAIService() *AIService {
	return &AIService{models: map[string][]string{
		"qwen":   {"qwen-max", "qwen-plus", "qwen-turbo"},
		"claude": {"claude-3-5-sonnet", "claude-3-5-haiku"},
	}}
}

func (s *AIService) Models(provider string) ([]string, error) {
	names, ok := s.models[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// ChatCompletion is the OpenAI-shaped body returned by Complete.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

type ChatChoice struct {
	Index        int             `json:"index"`
	Message      *models.Message `json:"message,omitempty"`
	Delta        *models.Message `json:"delta,omitempty"`
	FinishReason *string         `json:"finish_reason"`
}

func (s *AIService) Complete(provider string, req *models.CompletionRequest) (*ChatCompletion, error) {
	if _, ok := s.models[provider]; !ok {
		return nil, ErrUnknownProvider
	}

	stop := "stop"
	return &ChatCompletion{
		ID:      "chatcmpl-" + ulid.Make().String(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []ChatChoice{{
			Message:      &models.Message{Role: "assistant", Content: reply(req)},
			FinishReason: &stop,
		}},
	}, nil
}

// StreamChunks splits the reply into chat.completion.chunk frames, one per word.
func (s *AIService) StreamChunks(provider string, req *models.CompletionRequest) ([]ChatCompletion, error) {
	if _, ok := s.models[provider]; !ok {
		return nil, ErrUnknownProvider
	}

	id := "chatcmpl-" + ulid.Make().String()
	created := time.Now().Unix()
	words := strings.Fields(reply(req))

	chunks := make([]ChatCompletion, 0, len(words)+1)
	for i, w := range words {
		if i > 0 {
			w = " " + w
		}
		chunks = append(chunks, ChatCompletion{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
			Choices: []ChatChoice{{Delta: &models.Message{Role: "assistant", Content: w}}},
		})
	}
	stop := "stop"
	chunks = append(chunks, ChatCompletion{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
		Choices: []ChatChoice{{Delta: &models.Message{}, FinishReason: &stop}},
	})
	return chunks, nil
}

func reply(req *models.CompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return fmt.Sprintf("You said: %s", req.Messages[i].Content)
		}
	}
	return "Hello from the Iskra development backend."
}
