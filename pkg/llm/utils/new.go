// Package llmutils is the completion provider utility package
package llmutils

import (
	"fmt"

	"github.com/groundedhq/grounded/pkg/llm"
	"github.com/groundedhq/grounded/pkg/llm/ollama"
	"github.com/groundedhq/grounded/pkg/llm/openai"
)

type NewCompleterOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
}

func NewCompleter(o *NewCompleterOpts) (llm.Completer, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewClient(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewClient(openai.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", o.ProviderType)
	}
}
