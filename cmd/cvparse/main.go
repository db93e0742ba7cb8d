// Command cvparse parses resume files from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	segmentMode  string
	usePdftotext bool
)

var rootCmd = &cobra.Command{
	Use:          "cvparse",
	Short:        "Parse resumes into structured JSON",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&segmentMode, "mode", "split", "section detection mode (split|prefix)")
	rootCmd.PersistentFlags().BoolVar(&usePdftotext, "pdftotext", true, "fall back to pdftotext for unreadable PDFs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
