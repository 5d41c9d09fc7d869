package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDistributeCmd(t *testing.T) {
	out, err := execute(t, "distribute", "10", "3")
	require.NoError(t, err)
	assert.Equal(t, "3.33 3.33 3.34\n", out)

	_, err = execute(t, "distribute", "10", "0")
	assert.Error(t, err)
}

func TestRoundCmd(t *testing.T) {
	out, err := execute(t, "round", "10", "3.333", "3.333", "3.333")
	require.NoError(t, err)
	assert.Equal(t, "3.33 3.33 3.34\n", out)
}

func TestCalcCmd(t *testing.T) {
	dir := t.TempDir()
	receipt := writeFile(t, dir, "receipt.json", `{
		"id": "r1",
		"items": [
			{"id": "pizza", "description": "Pizza", "price": 20, "quantity": 1, "assignedTo": ["ann"]},
			{"id": "salad", "description": "Salad", "price": 10, "quantity": 1, "assignedTo": ["bob"]},
			{"id": "wine", "description": "Wine", "price": 15, "quantity": 1, "assignedTo": []}
		],
		"subtotal": 45,
		"tax": [{"description": "Tax", "amount": 3}],
		"tip": 6,
		"fees": [],
		"total": 54
	}`)
	people := writeFile(t, dir, "people.json", `[{"id": "ann", "name": "Ann"}, {"id": "bob", "name": "Bob"}]`)

	out, err := execute(t, "calc", "--receipt", receipt, "--people", people)
	require.NoError(t, err)

	// Ann: 20 + 2 tax + 4 tip = 26; Bob: 10 + 1 + 2 = 13.
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "26.00")
	assert.Contains(t, out, "13.00")
	assert.Contains(t, out, "split total 39.00 of receipt total 54.00 (drift 15.00)")
	assert.Contains(t, out, "warning: 1 unassigned item(s) worth 15.00: [wine]")
}

func TestCalcCmdRequiresFlags(t *testing.T) {
	_, err := execute(t, "calc")
	assert.Error(t, err)
}
