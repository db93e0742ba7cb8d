package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `PERSONAL INFORMATION
Name: Jane Doe Email: jane@example.com
SKILLS
Go
SQL
PROJECTS
cvparse`

// run executes the CLI with args, resetting flag state between runs.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	segmentMode, usePdftotext = "split", true
	prettyOutput, keepRawText = false, false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestParseCmd_Stdin(t *testing.T) {
	out, err := run(t, sampleResume, "parse", "-")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotContains(t, got, "raw_text")
	assert.Equal(t, []any{"Go", "SQL"}, got["skills"])
	assert.Equal(t, "Jane Doe", got["personal"].(map[string]any)["name"])
	assert.True(t, strings.Index(out, `"personal"`) < strings.Index(out, `"skills"`), "key order changed: %s", out)
}

func TestParseCmd_RawAndPretty(t *testing.T) {
	out, err := run(t, "SKILLS\nGo", "parse", "--raw", "--pretty", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"raw_text": "SKILLS\nGo"`)
	assert.Contains(t, out, "\n  \"skills\"")
}

func TestParseCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.md")
	require.NoError(t, os.WriteFile(path, []byte("# Skills\n\n- Go\n"), 0o644))

	out, err := run(t, "", "parse", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":["Go"]}`, out)
}

func TestParseCmd_Errors(t *testing.T) {
	_, err := run(t, "", "parse", "resume.exe")
	assert.Error(t, err)

	_, err = run(t, "", "parse", "--mode", "fuzzy", "-")
	assert.Error(t, err)

	_, err = run(t, "", "parse")
	assert.Error(t, err)
}

func TestSectionsCmd(t *testing.T) {
	out, err := run(t, sampleResume, "sections", "--mode", "prefix", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "== SKILLS (2 lines)\nGo\nSQL\n")
	assert.Contains(t, out, "== PROJECTS (1 lines)\ncvparse\n")
	assert.True(t, strings.Index(out, "PERSONAL INFORMATION") < strings.Index(out, "== SKILLS"))
}

func TestSectionsCmd_None(t *testing.T) {
	out, err := run(t, "just some text", "sections", "-")
	require.NoError(t, err)
	assert.Equal(t, "no sections detected\n", out)
}
