package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunPrintsEveryTier(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, 0, "10"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	require.Contains(t, lines[4], "12 Months")
	require.Contains(t, lines[4], "3600.00")
	require.Contains(t, lines[4], "144.00")
	require.Contains(t, lines[4], "3744.00")
}

func TestRunSingleDuration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, 3, "6"))
	out := buf.String()
	require.Contains(t, out, "3 Months")
	require.Contains(t, out, "540.00")
	require.NotContains(t, out, "6 Months")
}

func TestRunRejectsBadInput(t *testing.T) {
	require.Error(t, run(&bytes.Buffer{}, 4, "6"))
	require.Error(t, run(&bytes.Buffer{}, 3, "0"))
	require.Error(t, run(&bytes.Buffer{}, 3, "abc"))
}
