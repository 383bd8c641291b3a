package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mangleddev/behaviorlab/internal/store"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestNewCommand_ProjectConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := "store:\n  path: test.db\ndefaults:\n  tier: quick\n  diversity: 0.9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".behaviorlab.yaml"), []byte(cfg), 0o644))
	t.Chdir(dir)

	out := runCLI(t, "new", "--behavior", "concise_responses")
	require.Contains(t, out, "tier quick")

	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	evs, err := st.ListEvaluations(ctx)
	require.NoError(t, st.Close())
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, "quick", evs[0].Config.Tier)
	require.InDelta(t, 0.9, evs[0].Config.Diversity, 1e-9)
}

func TestNewCommand_FlagsOverrideProjectDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := "store:\n  path: test.db\ndefaults:\n  tier: quick\n  diversity: 0.9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".behaviorlab.yaml"), []byte(cfg), 0o644))
	t.Chdir(dir)

	runCLI(t, "new", "--behavior", "concise_responses", "--tier", "comprehensive", "--diversity", "0.2")

	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	evs, err := st.ListEvaluations(ctx)
	require.NoError(t, st.Close())
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, "comprehensive", evs[0].Config.Tier)
	require.InDelta(t, 0.2, evs[0].Config.Diversity, 1e-9)
}
