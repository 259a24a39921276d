package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gridedit dev")
	assert.Contains(t, out, "Commit: unknown")
}

func TestPrintSample(t *testing.T) {
	out, err := execute(t, "print")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 12+4, out)
	assert.Contains(t, lines[1], "Joined Date")
	assert.Contains(t, out, "john.doe@example.com")
	assert.Contains(t, out, "Jan 15, 2023")
}

func TestPrintHideAndWidth(t *testing.T) {
	out, err := execute(t, "print", "--hide", "email,joinedDate", "--max-width", "6")
	require.NoError(t, err)

	assert.NotContains(t, out, "Email")
	assert.NotContains(t, out, "Joined")
	assert.Contains(t, out, "John …")
}

func TestPrintDataFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "team.toml")
	require.NoError(t, os.WriteFile(data, []byte(`
title = "Team"

[[columns]]
key = "id"
header = "ID"

[[columns]]
key = "lead"
header = "Lead"
format = "upper"

[[records]]
id = "t-1"
lead = "ann"
`), 0o644))

	out, err := execute(t, "print", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "t-1")
	assert.Contains(t, out, "ANN")
}

func TestPrintErrors(t *testing.T) {
	_, err := execute(t, "print", "--hide", "salary")
	assert.ErrorContains(t, err, `unknown column "salary"`)

	_, err = execute(t, "print", "--data", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "print", "extra")
	assert.Error(t, err)
}
