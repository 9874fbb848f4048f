package main

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wryz/bible-modules/internal/scripture/scripturetest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd(viper.New())
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--corpus", scripturetest.Path(), "--store", "memory"))
	err := root.Execute()
	return out.String(), err
}

func TestLookup(t *testing.T) {
	out, err := run(t, "lookup", "jn", "3:17")
	require.NoError(t, err)
	assert.Contains(t, out, "John 3:17\nFor God did not send his Son")
}

func TestLookup_Expand(t *testing.T) {
	out, err := run(t, "lookup", "John 3:16", "--expand")
	require.NoError(t, err)
	assert.Contains(t, out, "John 3:14-16\nJust as Moses")
}

func TestLookup_Unknown(t *testing.T) {
	_, err := run(t, "lookup", "Hezekiah 1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verse not found")
}

func TestSearch(t *testing.T) {
	out, err := run(t, "search", "blessed", "--book", "Matthew")
	require.NoError(t, err)
	assert.Contains(t, out, "Matthew 5:3")
	assert.Contains(t, out, "Matthew 5:4")
	assert.Contains(t, out, "2 matches")
}

func TestPopulate(t *testing.T) {
	out, err := run(t, "populate", "--count", "2")
	require.NoError(t, err)
	assert.Equal(t, "scheduled 2 reveals\n", out)
}

func TestPopulate_NegativeCount(t *testing.T) {
	_, err := run(t, "populate", "--count", "-1")
	require.Error(t, err)
}

func TestPromote_NothingDue(t *testing.T) {
	out, err := run(t, "promote")
	require.NoError(t, err)
	assert.Equal(t, "nothing due\n", out)
}
