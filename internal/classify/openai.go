package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"vslim/internal/log"
)

const (
	defaultModel        = openai.GPT4oMini
	classifyTimeout     = 20 * time.Second
	classifyMaxTokens   = 512
	classifyTemperature = 0
)

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClassifier asks a chat model to pick one category per description.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	logger *log.Logger
}

func NewOpenAIClassifier(cfg OpenAIConfig, logger *log.Logger) *OpenAIClassifier {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.WithComponent(log.ComponentClassify),
	}
}

func systemPrompt() string {
	return "Bạn phân loại các khoản chi tiêu. Với mỗi mô tả, chọn đúng một danh mục trong: " +
		strings.Join(Categories, ", ") +
		`. Nếu không chắc, dùng "none". Trả lời JSON dạng {"categories": ["..."]} theo đúng thứ tự và số lượng mô tả.`
}

func (c *OpenAIClassifier) Classify(ctx context.Context, descriptions []string) ([]string, error) {
	if len(descriptions) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	input, err := json.Marshal(descriptions)
	if err != nil {
		return nil, fmt.Errorf("encode descriptions: %w", err)
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   classifyMaxTokens,
		Temperature: classifyTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: string(input)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("category classification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("category classification: empty response")
	}

	var result struct {
		Categories []string `json:"categories"`
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		c.logger.WarnContext(ctx, "Unreadable classifier answer", "content", content, log.FieldError, err)
		return fillDefault(len(descriptions)), nil
	}

	out := fillDefault(len(descriptions))
	for i := range out {
		if i < len(result.Categories) {
			out[i] = Normalize(result.Categories[i])
		}
	}

	c.logger.DebugContext(ctx, "Descriptions classified",
		log.FieldCount, len(descriptions),
		"latency_ms", time.Since(start).Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens)
	return out, nil
}
