package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/dshills/blockpad/internal/lang"
)

// maxPromptContent bounds how much of a block is sent to a remote model.
const maxPromptContent = 4000

// RemoteConfig configures a model-backed classifier.
type RemoteConfig struct {
	// APIKey authenticates with the provider.
	APIKey string

	// Model is the model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// MaxRetries is the number of retries on transient errors.
	MaxRetries int
}

const systemPrompt = `You identify the programming or markup language of a snippet.
Answer with one JSON object and nothing else:
{"language": "<tag>", "relevance": <0 to 1>, "illegal": <true|false>}
where <tag> is one of: %s.
Use "text" for prose or when unsure.`

func remotePrompt() string {
	return fmt.Sprintf(systemPrompt, strings.Join(lang.Tags(), ", "))
}

func truncateContent(content string) string {
	if len(content) <= maxPromptContent {
		return content
	}
	cut := maxPromptContent
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// parseAnswer extracts a Result from a model reply. The reply may wrap
// the JSON object in prose or a code fence.
func parseAnswer(reply string) (Result, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return Result{}, fmt.Errorf("%w: %q", ErrNoAnswer, reply)
	}
	obj := reply[start : end+1]
	if !gjson.Valid(obj) {
		return Result{}, fmt.Errorf("%w: invalid JSON %q", ErrNoAnswer, obj)
	}

	fields := gjson.GetMany(obj, "language", "relevance", "illegal")
	l, _, ok := lang.ParseTag(strings.ToLower(strings.TrimSpace(fields[0].String())))
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown tag %q", ErrNoAnswer, fields[0].String())
	}
	relevance := MaxRelevance
	if fields[1].Exists() {
		relevance = min(max(fields[1].Float(), 0), MaxRelevance)
	}
	return Result{Language: l, Relevance: relevance, Illegal: fields[2].Bool()}, nil
}

// AnthropicClassifier asks an Anthropic model for the language.
type AnthropicClassifier struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClassifier creates a classifier using the Messages API.
func NewAnthropicClassifier(cfg RemoteConfig) *AnthropicClassifier {
	opts := []anthropicoption.RequestOption{anthropicoption.WithMaxRetries(cfg.MaxRetries)}
	if cfg.APIKey != "" {
		opts = append(opts, anthropicoption.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicClassifier{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Classify sends content to the model and parses its answer.
func (c *AnthropicClassifier) Classify(ctx context.Context, content string) (Result, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   64,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: remotePrompt()}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(truncateContent(content))),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("anthropic classify: %w", err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	return parseAnswer(reply.String())
}

// OpenAIClassifier asks an OpenAI chat model for the language.
type OpenAIClassifier struct {
	client openai.Client
	model  string
}

// NewOpenAIClassifier creates a classifier using chat completions.
func NewOpenAIClassifier(cfg RemoteConfig) *OpenAIClassifier {
	opts := []openaioption.RequestOption{openaioption.WithMaxRetries(cfg.MaxRetries)}
	if cfg.APIKey != "" {
		opts = append(opts, openaioption.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClassifier{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Classify sends content to the model and parses its answer.
func (c *OpenAIClassifier) Classify(ctx context.Context, content string) (Result, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		MaxTokens:   openai.Int(64),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(remotePrompt()),
			openai.UserMessage(truncateContent(content)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai classify: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{}, fmt.Errorf("openai classify: %w", ErrNoAnswer)
	}
	return parseAnswer(completion.Choices[0].Message.Content)
}
