package openai

import (
	"context"
	"errors"

	"github.com/Abraxas-365/finextract/llm"
	"github.com/sashabaranov/go-openai"
)

type OpenAILLM struct {
	client *openai.Client
	model  string
}

func NewOpenAILLM(apiKey string, model string) *OpenAILLM {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAILLM{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// NewCompatibleLLM targets any server exposing the OpenAI chat API under
// baseURL, such as a locally hosted model server.
func NewCompatibleLLM(baseURL, apiKey, model string) *OpenAILLM {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAILLM{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (o *OpenAILLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Message, error) {
	options := &llm.ChatOptions{
		Temperature: 0,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Convert messages to OpenAI format
	openAIMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openAIMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    openAIMessages,
		Temperature: options.Temperature,
		TopP:        options.TopP,
		MaxTokens:   options.MaxTokens,
		Stop:        options.Stop,
	}

	// Add tools if functions are provided
	if len(options.Functions) > 0 {
		tools := make([]openai.Tool, len(options.Functions))
		for i, f := range options.Functions {
			tools[i] = openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        f.Name,
					Description: f.Description,
					Parameters:  f.Parameters,
				},
			}
		}
		req.Tools = tools

		if options.FunctionCall != "" {
			req.ToolChoice = &openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: options.FunctionCall,
				},
			}
		} else {
			req.ToolChoice = "auto"
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, handleOpenAIError("Chat", err)
	}

	if len(resp.Choices) == 0 {
		return nil, &llm.GenerationError{
			Op:      "Chat",
			Code:    llm.ErrCodeAPIError,
			Message: "no response choices returned",
		}
	}

	message := &llm.Message{
		Role:    resp.Choices[0].Message.Role,
		Content: resp.Choices[0].Message.Content,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	// Handle tool calls in response
	if len(resp.Choices[0].Message.ToolCalls) > 0 {
		toolCall := resp.Choices[0].Message.ToolCalls[0]
		message.FuncCall = &llm.FunctionCall{
			Name:      toolCall.Function.Name,
			Arguments: toolCall.Function.Arguments,
		}
	}

	return message, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	messages := []llm.Message{
		{
			Role:    llm.RoleUser,
			Content: prompt,
		},
	}

	resp, err := o.Chat(ctx, messages, opts...)
	if err != nil {
		return "", err
	}

	return resp.Content, nil
}

func handleOpenAIError(op string, err error) error {
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

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 400:
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeInvalidInput,
				Message: "invalid request",
				Err:     err,
			}
		case 401:
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeAPIError,
				Message: "invalid API key",
				Err:     err,
			}
		case 429:
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeRateLimitExceeded,
				Message: "rate limit exceeded",
				Err:     err,
			}
		case 500, 502, 503:
			return &llm.GenerationError{
				Op:      op,
				Code:    llm.ErrCodeUnreachable,
				Message: "backend server error",
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
