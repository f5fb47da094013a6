package prompt_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundedhq/grounded/pkg/prompt"
)

func TestPromptTemplate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Prompt Template Suite")
}

var _ = Describe("Template", func() {
	Describe("New", func() {
		It("accepts a template carrying both placeholders", func() {
			_, err := prompt.New("Context: {context}\nQ: {question}")
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails at construction when the context placeholder is missing", func() {
			_, err := prompt.New("Q: {question}")
			Expect(err).To(MatchError(prompt.ErrMissingPlaceholder))
			Expect(err.Error()).To(ContainSubstring("{context}"))
		})

		It("fails at construction when the question placeholder is missing", func() {
			_, err := prompt.New("Context: {context}")
			Expect(err).To(MatchError(prompt.ErrMissingPlaceholder))
		})

		It("honors an overridden required set", func() {
			_, err := prompt.New("just {question}", prompt.WithRequired(prompt.PlaceholderQuestion))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Render", func() {
		It("joins context documents with the separator", func() {
			tmpl, err := prompt.New("{context}|{question}", prompt.WithSeparator("\n"))
			Expect(err).NotTo(HaveOccurred())

			out := tmpl.Render([]string{"one", "two"}, "why?")
			Expect(out).To(Equal("one\ntwo|why?"))
		})

		It("renders deterministically with an empty context", func() {
			tmpl, err := prompt.New("{context}|{question}")
			Expect(err).NotTo(HaveOccurred())

			Expect(tmpl.Render(nil, "why?")).To(Equal("|why?"))
		})

		It("is pure: identical inputs yield identical output", func() {
			tmpl, err := prompt.New(prompt.DefaultTemplate)
			Expect(err).NotTo(HaveOccurred())

			docs := []string{"Paris is the capital of France."}
			first := tmpl.Render(docs, "What is the capital of France?")
			second := tmpl.Render(docs, "What is the capital of France?")
			Expect(first).To(Equal(second))
			Expect(first).To(ContainSubstring("Paris is the capital of France."))
		})
	})

	Describe("Default", func() {
		It("returns a template with both placeholders filled at render time", func() {
			out := prompt.Default().Render([]string{"ctx"}, "q")
			Expect(out).NotTo(ContainSubstring("{context}"))
			Expect(out).NotTo(ContainSubstring("{question}"))
		})
	})
})
