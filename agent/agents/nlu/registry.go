package nlu

import (
	"context"
	"fmt"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	llmx "github.com/vaiulabs/bistro-host/agent/llm"
	promptx "github.com/vaiulabs/bistro-host/agent/prompt"
)

type registryImpl struct {
	extractor  contractx.SlotExtractor
	classifier contractx.Classifier
	composer   contractx.ReplyComposer
}

func (r *registryImpl) Extractor() contractx.SlotExtractor { return r.extractor }
func (r *registryImpl) Classifier() contractx.Classifier   { return r.classifier }
func (r *registryImpl) Composer() contractx.ReplyComposer  { return r.composer }

// NewRegistry builds the three LLM collaborators, one chat model per role
// so extraction and classification can run on cheaper models than reply
// wording if configured that way.
func NewRegistry(ctx context.Context, cfg llmx.Config, prompts promptx.PromptSet) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	extractorCfg := cfg.OpenRouterFor(contractx.RoleExtractor)
	extractorModel, err := extractorCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("build extractor model: %w", err)
	}
	classifierCfg := cfg.OpenRouterFor(contractx.RoleClassifier)
	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("build classifier model: %w", err)
	}
	composerCfg := cfg.OpenRouterFor(contractx.RoleComposer)
	composerModel, err := composerCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("build composer model: %w", err)
	}

	extractor, err := newExtractor(ctx, extractorModel, prompts.Extractor)
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(ctx, classifierModel, prompts.Classifier)
	if err != nil {
		return nil, err
	}
	composer, err := newComposer(ctx, composerModel, prompts.Composer)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		extractor:  extractor,
		classifier: classifier,
		composer:   composer,
	}, nil
}
