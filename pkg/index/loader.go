package index

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxChunkLen caps a single document's length. Longer paragraphs are split
// so no chunk exceeds an embedder-friendly size.
const maxChunkLen = 2000

// loadableExts are the file extensions the directory loader picks up.
var loadableExts = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// LoadDir walks a directory tree and loads every text/markdown file as
// documents, one per paragraph chunk. Ids are left empty so the indexer
// derives them from content.
func LoadDir(root string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git and .grounded.
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !loadableExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		fileDocs, err := LoadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, fileDocs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading documents from %s: %w", root, err)
	}

	return docs, nil
}

// LoadFile reads a single file and splits it into paragraph chunks.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	chunks := Chunk(string(data))
	docs := make([]Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, Document{Text: chunk})
	}
	return docs, nil
}

// Chunk splits text on blank lines into paragraphs, merging small
// paragraphs up to maxChunkLen and hard-splitting oversized ones.
func Chunk(text string) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		// Hard-split paragraphs that alone exceed the cap.
		for len(p) > maxChunkLen {
			flush()
			cut := maxChunkLen
			if idx := strings.LastIndexByte(p[:maxChunkLen], ' '); idx > 0 {
				cut = idx
			}
			chunks = append(chunks, strings.TrimSpace(p[:cut]))
			p = strings.TrimSpace(p[cut:])
		}

		if current.Len() > 0 && current.Len()+len(p)+2 > maxChunkLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return chunks
}
