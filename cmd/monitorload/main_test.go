package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRootCmd(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cmd := newRootCmd(zap.New(core))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--total", "1000", "--threads", "1,3,7", "--fill", "25", "--tree"})
	require.NoError(t, cmd.Execute())

	entries := logs.FilterMessage("load finished").All()
	require.Len(t, entries, 3)
	for i, threads := range []int64{1, 3, 7} {
		fields := entries[i].ContextMap()
		assert.Equal(t, threads, fields["threads"])
		assert.Equal(t, int64(1000), fields["splits"], "every cycle is committed, remainder included")
	}

	tree := out.String()
	assert.True(t, strings.HasPrefix(tree, "(root)\n"), tree)
	assert.Contains(t, tree, "load  Stopwatch")
	assert.Contains(t, tree, "c24  Counter")
	assert.Contains(t, tree, "runtime\n")
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), zap.NewNop(), &out, options{total: 10, threads: []int{2}, json: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"type":"stopwatch"`)
	assert.Contains(t, out.String(), `"count":"10"`)
}

func TestRunInvalid(t *testing.T) {
	tests := map[string]options{
		"total":      {total: 0, threads: []int{1}},
		"no threads": {total: 10},
		"zero":       {total: 10, threads: []int{0}},
		"too many":   {total: 10, threads: []int{11}},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(context.Background(), zap.NewNop(), &bytes.Buffer{}, opts))
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx, zap.NewNop(), &bytes.Buffer{}, options{total: 100, threads: []int{2}})
	assert.ErrorIs(t, err, context.Canceled)
}
