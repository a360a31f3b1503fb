package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
)

var (
	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/composer.txt
	composerRaw string
)

// PromptSet holds the system prompts of the NLU collaborators.
type PromptSet struct {
	Extractor  string
	Classifier string
	Composer   string
}

// LoadPromptSet returns the embedded prompts, trimmed. Safe to call
// concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Extractor:  strings.TrimSpace(extractorRaw),
		Classifier: strings.TrimSpace(classifierRaw),
		Composer:   strings.TrimSpace(composerRaw),
	}
}

func (p PromptSet) Validate() error {
	if p.Extractor == "" {
		return fmt.Errorf("%w: extractor", contractx.ErrPromptMissing)
	}
	if p.Classifier == "" {
		return fmt.Errorf("%w: classifier", contractx.ErrPromptMissing)
	}
	if p.Composer == "" {
		return fmt.Errorf("%w: composer", contractx.ErrPromptMissing)
	}
	return nil
}
