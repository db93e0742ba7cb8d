package main

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var (
	prettyOutput bool
	keepRawText  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse a resume and print it as JSON",
	Long: `Parse a resume (.pdf, .docx, .txt, .md, .html) and print the detected
sections as JSON. Use "-" to read plain text from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&prettyOutput, "pretty", false, "indent the JSON output")
	parseCmd.Flags().BoolVar(&keepRawText, "raw", false, "include the extracted raw_text")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	seg, err := segmenter()
	if err != nil {
		return err
	}
	text, err := readText(cmd, args[0])
	if err != nil {
		return err
	}

	res := resume.NewParser(resume.WithSegmenter(seg)).Parse(text)
	out, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if !keepRawText {
		out = withoutKey(out, "raw_text")
	}
	if prettyOutput {
		out = pretty.Pretty(out)
	} else {
		out = append(out, '\n')
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// withoutKey drops key from a JSON object, keeping the other members in
// their original order.
func withoutKey(obj []byte, key string) []byte {
	out := []byte{'{'}
	gjson.ParseBytes(obj).ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			return true
		}
		if len(out) > 1 {
			out = append(out, ',')
		}
		out = append(out, k.Raw...)
		out = append(out, ':')
		out = append(out, v.Raw...)
		return true
	})
	return append(out, '}')
}
