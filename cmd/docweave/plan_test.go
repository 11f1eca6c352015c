package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docweave/docweave/pkg/ast"
	"github.com/docweave/docweave/pkg/source"
)

func writeDocFile(t *testing.T, dir, name string, doc *ast.Document) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testDocs() (*ast.Document, *ast.Document) {
	before := &ast.Document{Blocks: ast.Blocks{
		&ast.Para{
			Inlines: ast.Inlines{&ast.Str{Text: "alpha", Src: source.FromOffsets(0, 0, 5)}},
			Src:     source.FromOffsets(0, 0, 6),
		},
		&ast.Para{
			Inlines: ast.Inlines{&ast.Str{Text: "beta", Src: source.FromOffsets(0, 7, 11)}},
			Src:     source.FromOffsets(0, 7, 12),
		},
	}}
	after := &ast.Document{Blocks: ast.Blocks{
		&ast.Para{Inlines: ast.Inlines{&ast.Str{Text: "alpha"}}},
		&ast.Para{Inlines: ast.Inlines{&ast.Str{Text: "gamma"}}},
	}}
	return before, after
}

func TestRunPlanJSON(t *testing.T) {
	dir := t.TempDir()
	before, after := testDocs()
	planBefore = writeDocFile(t, dir, "before.json", before)
	planAfter = writeDocFile(t, dir, "after.json", after)
	planFormat = "json"

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runPlan(cmd, nil))

	var report planReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.TotalBlocks)
	assert.Equal(t, 1, report.Summary.BlocksKept)
	assert.Equal(t, 1, report.Summary.BlocksReplaced)
	assert.InDelta(t, 0.5, report.Summary.PreservationRate, 1e-9)
	require.NotNil(t, report.Plan)
	assert.Len(t, report.Plan.BlockAlignments, 2)
}

func TestRunPlanSummary(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	before, after := testDocs()
	planBefore = writeDocFile(t, dir, "before.json", before)
	planAfter = writeDocFile(t, dir, "after.json", after)
	planFormat = "summary"

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runPlan(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Reconciliation Report")
	assert.Contains(t, out, "Blocks kept from before: 1")
	assert.Contains(t, out, "Preservation rate:       50.0%")
}

func TestRunPlanUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	before, after := testDocs()
	planBefore = writeDocFile(t, dir, "before.json", before)
	planAfter = writeDocFile(t, dir, "after.json", after)
	planFormat = "xml"

	err := runPlan(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRunPlanMissingFile(t *testing.T) {
	planBefore = filepath.Join(t.TempDir(), "nope.json")
	planAfter = planBefore
	planFormat = "json"

	err := runPlan(&cobra.Command{}, nil)
	require.Error(t, err)
}

func TestReadDocumentRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := readDocument(path)
	require.Error(t, err)
}
