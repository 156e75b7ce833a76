package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "askd", Short: "askai daemon"}
	AddHelpJSONFlag(root)
	root.PersistentFlags().String("path", "", "Knowledge base location")

	kb := &cobra.Command{Use: "kb", Short: "Knowledge base", Aliases: []string{"faq"}}
	match := &cobra.Command{Use: "match <question>", Short: "Match locally", Run: func(*cobra.Command, []string) {}}
	match.Flags().StringP("output", "o", "text", "Output format")
	kb.AddCommand(match)
	root.AddCommand(kb)
	root.AddCommand(&cobra.Command{Use: "secret", Hidden: true, Run: func(*cobra.Command, []string) {}})

	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "askd", schema.Name)
	require.Len(t, schema.Subcommands, 1)
	assert.Equal(t, "kb", schema.Subcommands[0].Name)

	require.Len(t, schema.Flags, 1)
	assert.Equal(t, "path", schema.Flags[0].Name)
	assert.True(t, schema.Flags[0].Persistent)

	match := schema.Subcommands[0].Subcommands[0]
	assert.Equal(t, "match <question>", match.Use)
	require.Len(t, match.Flags, 1)
	assert.Equal(t, FlagSchema{Name: "output", Shorthand: "o", Type: "string", Default: "text", Description: "Output format"}, match.Flags[0])
}

func TestHelpJSONTarget(t *testing.T) {
	root := testTree()

	_, ok := HelpJSONTarget(root, []string{"kb", "match", "hello"})
	assert.False(t, ok)

	target, ok := HelpJSONTarget(root, []string{"kb", "match", "--help-json"})
	require.True(t, ok)
	assert.Equal(t, "match", target.Name())

	target, ok = HelpJSONTarget(root, []string{"faq", "--help-json"})
	require.True(t, ok)
	assert.Equal(t, "kb", target.Name())

	target, ok = HelpJSONTarget(root, []string{"unknown", "--help-json"})
	require.True(t, ok)
	assert.Equal(t, "askd", target.Name())
}

func TestWriteSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteSchema(&out, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "askai daemon", decoded.Description)
	assert.Len(t, decoded.Subcommands, 1)
}
