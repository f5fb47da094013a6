// Package prompt assembles completion prompts from retrieved context and a
// question. Templates are validated when built, so a misconfigured template
// fails at startup instead of on the first query.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// PlaceholderContext is the slot the joined context documents fill.
	PlaceholderContext = "{context}"

	// PlaceholderQuestion is the slot the user's question fills.
	PlaceholderQuestion = "{question}"

	// DefaultSeparator joins context documents before substitution.
	DefaultSeparator = "\n\n"
)

// DefaultTemplate is the stock retrieval-QA prompt.
const DefaultTemplate = `Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

{context}

Question: {question}
Helpful Answer:`

// ErrMissingPlaceholder is returned when a template lacks a required
// placeholder.
var ErrMissingPlaceholder = errors.New("template missing required placeholder")

// Template is a validated prompt template. Render is pure: the same inputs
// always produce the same string.
type Template struct {
	raw       string
	required  []string
	separator string
}

// Option configures a Template created with New.
type Option func(*Template)

// WithSeparator overrides the string joining context documents.
func WithSeparator(sep string) Option {
	return func(t *Template) {
		t.separator = sep
	}
}

// WithRequired overrides the set of placeholders the template must contain.
// Defaults to PlaceholderContext and PlaceholderQuestion.
func WithRequired(placeholders ...string) Option {
	return func(t *Template) {
		t.required = placeholders
	}
}

// New builds a Template from raw template text, failing if any required
// placeholder is not present literally.
func New(raw string, opts ...Option) (*Template, error) {
	t := &Template{
		raw:       raw,
		required:  []string{PlaceholderContext, PlaceholderQuestion},
		separator: DefaultSeparator,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, placeholder := range t.required {
		if !strings.Contains(t.raw, placeholder) {
			return nil, fmt.Errorf("%w: %s", ErrMissingPlaceholder, placeholder)
		}
	}

	return t, nil
}

// Default returns the stock retrieval-QA template.
func Default() *Template {
	t, err := New(DefaultTemplate)
	if err != nil {
		// The stock template carries both placeholders.
		panic(err)
	}
	return t
}

// Render substitutes the joined context documents and the question into the
// template. An empty context slice substitutes an empty string, so the
// output is deterministic even with no retrieved documents.
func (t *Template) Render(contextDocs []string, question string) string {
	rendered := strings.ReplaceAll(t.raw, PlaceholderContext, strings.Join(contextDocs, t.separator))
	return strings.ReplaceAll(rendered, PlaceholderQuestion, question)
}
