package bedrock

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Abraxas-365/finextract/llm"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/ptr"
)

// LLMModelID represents available Bedrock models
type LLMModelID string

const (
	Claude3Sonnet LLMModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	Claude3Haiku  LLMModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	Claude3Opus   LLMModelID = "anthropic.claude-3-opus-20240229-v1:0"
)

// BedrockLLM is a generation backend served by AWS Bedrock. Bedrock has
// no tool-call interface here, so schema-constrained callers parse the
// JSON out of the text response instead.
type BedrockLLM struct {
	client *bedrockruntime.Client
	model  LLMModelID
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Messages         []anthropicMessage `json:"messages"`
	System           string             `json:"system,omitempty"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float32            `json:"temperature,omitempty"`
	TopP             float32            `json:"top_p,omitempty"`
	StopSequences    []string           `json:"stop_sequences,omitempty"`
	AnthropicVersion string             `json:"anthropic_version"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason,omitempty"`
	Model      string                  `json:"model,omitempty"`
}

func NewBedrockLLM(client *bedrockruntime.Client, model LLMModelID) *BedrockLLM {
	if model == "" {
		model = Claude3Sonnet
	}
	return &BedrockLLM{
		client: client,
		model:  model,
	}
}

func (b *BedrockLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Message, error) {
	options := &llm.ChatOptions{
		Temperature: 0,
		MaxTokens:   2000,
	}
	for _, opt := range opts {
		opt(options)
	}

	// The messages API takes the system prompt as a separate field
	var system string
	var chatMessages []anthropicMessage
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			system = msg.Content
			continue
		}
		chatMessages = append(chatMessages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	requestBody, err := json.Marshal(anthropicRequest{
		Messages:         chatMessages,
		System:           system,
		MaxTokens:        options.MaxTokens,
		Temperature:      options.Temperature,
		TopP:             options.TopP,
		StopSequences:    options.Stop,
		AnthropicVersion: "bedrock-2023-05-31",
	})
	if err != nil {
		return nil, &llm.GenerationError{
			Op:      "Chat",
			Code:    llm.ErrCodeInternal,
			Message: "failed to marshal request",
			Err:     err,
		}
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     ptr.String(string(b.model)),
		Body:        requestBody,
		ContentType: ptr.String("application/json"),
	})
	if err != nil {
		return nil, handleBedrockError("Chat", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return nil, &llm.GenerationError{
			Op:      "Chat",
			Code:    llm.ErrCodeAPIError,
			Message: "failed to unmarshal response",
			Err:     err,
		}
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &llm.Message{
		Role:    llm.RoleAssistant,
		Content: content,
	}, nil
}

func (b *BedrockLLM) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	resp, err := b.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func handleBedrockError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.GenerationError{
			Op:      op,
			Code:    llm.ErrCodeTimeout,
			Message: "request timed out",
			Err:     err,
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException":
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeRateLimitExceeded,
				Message: "rate limit exceeded",
				Err:     err,
			}
		case "ModelNotReadyException", "ServiceUnavailableException":
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeUnreachable,
				Message: "model is not available",
				Err:     err,
			}
		case "ValidationException":
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeInvalidInput,
				Message: "invalid request",
				Err:     err,
			}
		}
	}

	return &llm.GenerationError{
		Op:      op,
		Code:    llm.ErrCodeInternal,
		Message: "unexpected error",
		Err:     err,
	}
}
