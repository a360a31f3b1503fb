package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

type extractorImpl struct {
	runner compose.Runnable[map[string]any, extractorLLMOutput]
}

type extractorLLMOutput struct {
	Slots    map[string]any `json:"slots,omitempty"`
	Location string         `json:"location,omitempty"`
}

func newExtractor(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*extractorImpl, error) {
	runner, err := compileStructuredGraph[extractorLLMOutput](ctx, chatModel, systemPrompt, "nlu.extractor_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile extractor graph: %v", contractx.ErrModelInvoke, err)
	}
	return &extractorImpl{runner: runner}, nil
}

func (e *extractorImpl) Extract(ctx context.Context, req contractx.ExtractRequest) (contractx.ExtractResponse, error) {
	if strings.TrimSpace(req.Utterance) == "" {
		return contractx.ExtractResponse{}, fmt.Errorf("%w: utterance is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"utterance":     req.Utterance,
		"pending_field": string(req.PendingField),
		"draft":         req.DraftSummary,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.ExtractResponse{}, fmt.Errorf("%w: marshal extractor payload: %v", contractx.ErrValidation, err)
	}

	out, err := e.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.ExtractResponse{}, fmt.Errorf("%w: extractor invoke: %v", contractx.ErrModelInvoke, err)
	}

	// Drop keys the draft does not know; the model occasionally invents
	// its own field names.
	slots := make(map[string]any, len(out.Slots))
	for name, value := range out.Slots {
		field, ok := statex.KnownField(name)
		if !ok {
			continue
		}
		slots[string(field)] = value
	}

	return contractx.ExtractResponse{
		Slots:    slots,
		Location: strings.TrimSpace(out.Location),
	}, nil
}
