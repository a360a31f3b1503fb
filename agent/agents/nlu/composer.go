package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
)

type composerImpl struct {
	runner compose.Runnable[map[string]any, composerLLMOutput]
}

type composerLLMOutput struct {
	Message string `json:"message"`
}

func newComposer(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*composerImpl, error) {
	runner, err := compileStructuredGraph[composerLLMOutput](ctx, chatModel, systemPrompt, "nlu.composer_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile composer graph: %v", contractx.ErrModelInvoke, err)
	}
	return &composerImpl{runner: runner}, nil
}

func (c *composerImpl) Compose(ctx context.Context, req contractx.ComposeRequest) (string, error) {
	if strings.TrimSpace(req.CannedText) == "" {
		return "", fmt.Errorf("%w: canned text is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"intent": req.Intent,
		"text":   req.CannedText,
		"draft":  req.DraftSummary,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal composer payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return "", fmt.Errorf("%w: composer invoke: %v", contractx.ErrModelInvoke, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return "", fmt.Errorf("%w: composer message is empty", contractx.ErrSchemaViolation)
	}
	return message, nil
}
