package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/cvparse/internal/parser"
	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/spf13/cobra"
)

// readText returns the text of path. "-" reads plain text from stdin.
func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	ext, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: usePdftotext})
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := ext.Extract(f, path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return doc.Text, nil
}

func segmenter() (resume.Segmenter, error) {
	return resume.SegmenterFor(segmentMode)
}
