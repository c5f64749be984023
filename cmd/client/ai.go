package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/api"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Talk to the AI providers",
}

var aiModelsCmd = &cobra.Command{
	Use:   "models [qwen|claude]",
	Short: "List the models offered for a provider",
	Args:  cobra.MaximumNArgs(1),
	Run:   runAIModels,
}

var aiCompleteCmd = &cobra.Command{
	Use:   "complete [prompt]",
	Short: "Send a single-message chat completion",
	Long: `Send a single-message chat completion and print the provider's answer.

The prompt is read from standard input when no argument is given.

Examples:
  iskra ai complete "hello"
  iskra ai complete --provider claude --model claude-3-5-haiku "hello"
  echo "hello" | iskra ai complete --stream
  iskra ai complete --memory "refactor the handler"`,
	Run: runAIComplete,
}

var (
	aiProvider string
	aiModel    string
	aiStream   bool
	aiRaw      bool
	aiMemory   bool
)

func init() {
	aiCompleteCmd.Flags().StringVarP(&aiProvider, "provider", "p", string(api.ProviderQwen), "Provider: qwen or claude")
	aiCompleteCmd.Flags().StringVarP(&aiModel, "model", "m", "", "Model name (defaults to the provider's first model)")
	aiCompleteCmd.Flags().BoolVar(&aiStream, "stream", false, "Stream the answer as it is generated")
	aiCompleteCmd.Flags().BoolVar(&aiRaw, "raw", false, "Print the backend response body unmodified")
	aiCompleteCmd.Flags().BoolVar(&aiMemory, "memory", false, "Send the workspace memory bank as a system message")
	aiCmd.AddCommand(aiModelsCmd, aiCompleteCmd)
}

// maxStreamLine bounds a single SSE line.
const maxStreamLine = 1 << 20

// providerCalls are the session operations for one provider.
type providerCalls struct {
	models   func(context.Context) ([]string, error)
	complete func(context.Context, models.CompletionRequest) (json.RawMessage, error)
	stream   func(context.Context, models.CompletionRequest) (io.ReadCloser, error)
}

func providerFor(p api.Provider) (providerCalls, error) {
	switch p {
	case api.ProviderQwen:
		return providerCalls{app.session.QwenModels, app.session.QwenComplete, app.session.QwenStream}, nil
	case api.ProviderClaude:
		return providerCalls{app.session.ClaudeModels, app.session.ClaudeComplete, app.session.ClaudeStream}, nil
	}
	return providerCalls{}, fmt.Errorf("%w: %q", api.ErrUnknownProvider, p)
}

func runAIModels(cmd *cobra.Command, args []string) {
	providers := []api.Provider{api.ProviderQwen, api.ProviderClaude}
	if len(args) > 0 {
		providers = []api.Provider{api.Provider(args[0])}
	}

	ctx, cancel := requestContext()
	defer cancel()

	for _, p := range providers {
		calls, err := providerFor(p)
		if err != nil {
			fail("Failed to list models", err)
		}
		names, err := calls.models(ctx)
		if err != nil {
			fail(fmt.Sprintf("Failed to list %s models", p), err)
		}
		fmt.Printf("%s:\n", p)
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
}

func readPrompt(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fail("Failed to read prompt", err)
	}
	return strings.TrimSpace(string(data))
}

func runAIComplete(cmd *cobra.Command, args []string) {
	if !app.session.IsAuthenticated() {
		fmt.Println("Not signed in. Run 'iskra auth login' first")
		os.Exit(1)
	}

	provider := api.Provider(aiProvider)
	calls, err := providerFor(provider)
	if err != nil {
		fail("Completion failed", err)
	}

	model := aiModel
	if model == "" {
		ctx, cancel := requestContext()
		names, err := calls.models(ctx)
		cancel()
		if err != nil {
			fail("Failed to list models", err)
		}
		if len(names) == 0 {
			fmt.Printf("✗ Provider %s offers no models\n", provider)
			os.Exit(1)
		}
		model = names[0]
	}

	req := models.CompletionRequest{
		Model:    model,
		Messages: withMemory([]models.Message{{Role: "user", Content: readPrompt(args)}}),
	}

	if aiStream {
		streamCompletion(calls, req)
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	body, err := calls.complete(ctx, req)
	if err != nil {
		fail("Completion failed", err)
	}
	if aiRaw {
		fmt.Println(string(body))
		return
	}
	fmt.Println(answerText(body))
}

// withMemory prepends the memory bank when --memory is set and it is not empty.
func withMemory(msgs []models.Message) []models.Message {
	if !aiMemory {
		return msgs
	}
	bank := memoryStore().Render()
	if bank == "" {
		return msgs
	}
	return append([]models.Message{{Role: "system", Content: bank}}, msgs...)
}

// answerText pulls the first choice out of an OpenAI-shaped body, falling
// back to the raw body for anything else.
func answerText(body json.RawMessage) string {
	var completion struct {
		Choices []struct {
			Message *models.Message `json:"message"`
			Delta   *models.Message `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil || len(completion.Choices) == 0 {
		return string(body)
	}
	c := completion.Choices[0]
	switch {
	case c.Message != nil:
		return c.Message.Content
	case c.Delta != nil:
		return c.Delta.Content
	}
	return string(body)
}

func streamCompletion(calls providerCalls, req models.CompletionRequest) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	body, err := calls.stream(ctx, req)
	if err != nil {
		fail("Completion failed", err)
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for scanner.Scan() {
		line := scanner.Text()
		if aiRaw {
			fmt.Println(line)
			continue
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			break
		}
		fmt.Print(answerText(json.RawMessage(data)))
	}
	fmt.Println()
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		fail("Stream interrupted", err)
	}
}
