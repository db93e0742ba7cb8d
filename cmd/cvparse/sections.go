package main

import (
	"fmt"

	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <file|->",
	Short: "Print the section blocks detected in a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	seg, err := segmenter()
	if err != nil {
		return err
	}
	text, err := readText(cmd, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	sections := seg.Segment(text)
	found := 0
	for _, h := range resume.Headers {
		lines, ok := sections.Lookup(h)
		if !ok {
			continue
		}
		if found > 0 {
			fmt.Fprintln(w)
		}
		found++
		fmt.Fprintf(w, "== %s (%d lines)\n", h, len(lines))
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}
	if found == 0 {
		fmt.Fprintln(w, "no sections detected")
	}
	return nil
}
