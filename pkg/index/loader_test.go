package index_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/groundedhq/grounded/pkg/index"
)

var _ = Describe("Loader", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	}

	Describe("LoadDir", func() {
		It("loads text and markdown files", func() {
			write("a.txt", "alpha")
			write("b.md", "beta")
			write("c.bin", "ignored")

			docs, err := index.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
		})

		It("recurses into subdirectories", func() {
			write("sub/nested/a.txt", "alpha")

			docs, err := index.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Text).To(Equal("alpha"))
		})

		It("skips hidden directories", func() {
			write(".git/a.txt", "alpha")
			write("b.txt", "beta")

			docs, err := index.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Text).To(Equal("beta"))
		})

		It("splits files into paragraph chunks", func() {
			write("a.txt", "first paragraph\n\nsecond paragraph")

			docs, err := index.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Text).To(ContainSubstring("first paragraph"))
		})
	})

	Describe("Chunk", func() {
		It("returns nothing for blank input", func() {
			Expect(index.Chunk("   \n\n  ")).To(BeEmpty())
		})

		It("merges small paragraphs into one chunk", func() {
			chunks := index.Chunk("one\n\ntwo\n\nthree")
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0]).To(Equal("one\n\ntwo\n\nthree"))
		})

		It("starts a new chunk when the cap would be exceeded", func() {
			a := strings.Repeat("a", 1200)
			b := strings.Repeat("b", 1200)

			chunks := index.Chunk(a + "\n\n" + b)
			Expect(chunks).To(HaveLen(2))
			Expect(chunks[0]).To(Equal(a))
			Expect(chunks[1]).To(Equal(b))
		})

		It("hard-splits a single oversized paragraph", func() {
			words := strings.Repeat("word ", 1000)

			chunks := index.Chunk(words)
			Expect(len(chunks)).To(BeNumerically(">", 1))
			for _, c := range chunks {
				Expect(len(c)).To(BeNumerically("<=", 2000))
			}
		})

		It("normalizes CRLF line endings", func() {
			chunks := index.Chunk("one\r\n\r\ntwo")
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0]).To(Equal("one\n\ntwo"))
		})
	})
})
