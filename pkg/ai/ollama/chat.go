package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"graphrag/pkg/ai"

	"github.com/ollama/ollama/api"
)

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *GraphOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.0,
	}
	for _, o := range opts {
		o(&options)
	}

	messages := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		messages = append(messages, api.Message{Role: "system", Content: sp})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		return nil
	}); err != nil {
		return "", err
	}

	return final.Message.Content, nil
}

// GenerateCompletionWithFormat enforces a JSON schema on the response and
// unmarshals it into out. Responses that cannot be parsed into the schema
// fail with *ai.SchemaError.
func (c *GraphOllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if out == nil {
		return errors.New("out must be a non-nil pointer")
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	schemaObj := ai.GenerateSchema(out)
	formatBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return err
	}
	var format json.RawMessage = formatBytes

	options := ai.GenerateOptions{
		Model:       c.extractionModel,
		Temperature: 0.0,
	}
	for _, o := range opts {
		o(&options)
	}

	messages := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		messages = append(messages, api.Message{Role: "system", Content: sp})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: messages,
		Stream:   &stream,
		Format:   format,
		Options:  map[string]any{"temperature": options.Temperature},
	}

	var content string
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		content += cr.Message.Content
		return nil
	}); err != nil {
		return err
	}

	return ai.UnmarshalFlexible(content, out)
}
