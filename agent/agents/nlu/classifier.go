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

type classifierImpl struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

type classifierLLMOutput struct {
	Verdict        string `json:"verdict"`
	CorrectedField string `json:"corrected_field,omitempty"`
}

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	runner, err := compileStructuredGraph[classifierLLMOutput](ctx, chatModel, systemPrompt, "nlu.classifier_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.ClassifyResponse, error) {
	if strings.TrimSpace(req.Utterance) == "" {
		return contractx.ClassifyResponse{}, fmt.Errorf("%w: utterance is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"utterance": req.Utterance,
		"recap":     req.Recap,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.ClassifyResponse{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.ClassifyResponse{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}

	resp := contractx.ClassifyResponse{Verdict: normalizeVerdict(out.Verdict)}
	if resp.Verdict == contractx.VerdictNegative {
		if field, ok := statex.KnownField(out.CorrectedField); ok {
			resp.CorrectedField = field
		}
	}
	return resp, nil
}

// normalizeVerdict maps anything the model says onto the three-way
// verdict. Unknown labels collapse to ambiguous, which always re-asks.
func normalizeVerdict(raw string) contractx.Verdict {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "affirmative", "yes", "confirm", "confirmed":
		return contractx.VerdictAffirmative
	case "negative", "no", "reject", "rejected":
		return contractx.VerdictNegative
	default:
		return contractx.VerdictAmbiguous
	}
}
