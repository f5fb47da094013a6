package sse_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundedhq/grounded/pkg/sse"
)

func TestSSEReader(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SSE Reader Suite")
}

var _ = Describe("Reader", func() {
	It("parses a sequence of data events", func() {
		src := strings.NewReader("data: one\n\ndata: two\n\n")
		r := sse.NewReader(src)

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("one"))

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("two"))

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev).To(BeNil())
	})

	It("joins multiple data lines with a newline", func() {
		src := strings.NewReader("data: first\ndata: second\n\n")
		r := sse.NewReader(src)

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("first\nsecond"))
	})

	It("carries event type and id fields", func() {
		src := strings.NewReader("event: done\nid: 42\ndata: {}\n\n")
		r := sse.NewReader(src)

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Type).To(Equal("done"))
		Expect(ev.ID).To(Equal("42"))
		Expect(ev.Data).To(Equal("{}"))
	})

	It("skips comments and keep-alive blank lines", func() {
		src := strings.NewReader(": keep-alive\n\n\ndata: payload\n\n")
		r := sse.NewReader(src)

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("payload"))
	})

	It("yields a trailing event when the stream ends without a blank line", func() {
		src := strings.NewReader("data: tail")
		r := sse.NewReader(src)

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("tail"))
	})
})
