package qa

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultTimeout = 60 * time.Second
)

// OpenAIAsker calls any OpenAI-compatible chat completions API.
type OpenAIAsker struct {
	baseURL string
	timeout time.Duration
}

func NewOpenAIAsker(baseURL string, timeout time.Duration) *OpenAIAsker {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIAsker{
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Ask sends one prompt and returns the answer. The client is built per
// call because the API key is supplied per call.
func (a *OpenAIAsker) Ask(
	ctx context.Context,
	apiKey string,
	model string,
	summary string,
	question string,
) (string, error) {
	if err := validate(apiKey, model, summary, question); err != nil {
		return "", err
	}

	model = strings.TrimSpace(model)

	client := openai.NewClient(
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithBaseURL(a.baseURL),
		option.WithRequestTimeout(a.timeout),
		option.WithMaxRetries(0),
	)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(summary, question)),
		},
	})
	if err != nil {
		return "", &TransportError{Model: model, Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 {
		return FallbackAnswer, nil
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return FallbackAnswer, nil
	}

	return answer, nil
}
