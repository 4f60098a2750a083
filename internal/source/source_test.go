package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, LangPython, DetectLanguage("pkg/module.py"))
	assert.Equal(t, LangGo, DetectLanguage("cmd/main.go"))
	assert.Equal(t, LangJavaScript, DetectLanguage("web/app.ts"))
	assert.Equal(t, LangUnknown, DetectLanguage("README.md"))
	assert.Equal(t, LangUnknown, DetectLanguage("Makefile"))
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	_, err := Parse(File{Path: "data.csv", Content: "a,b\n"})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "data.csv", perr.Path)
}

func TestParse_BinaryContent(t *testing.T) {
	_, err := Parse(File{Path: "blob.py", Content: "abc\x00def"})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParsePython_Function(t *testing.T) {
	src := `import os
from . import helpers
from collections import OrderedDict


def process_items(items, limit=10, verbose=False, strict: bool = True) -> list:
    """Process items and return the filtered subset of them."""
    result = []
    for item in items:
        if item:
            result.append(item)
    return result
`
	u, err := Parse(File{Path: "proc.py", Content: src})
	require.NoError(t, err)

	require.Len(t, u.Functions, 1)
	fn := u.Functions[0]
	assert.Equal(t, "process_items", fn.Name)
	assert.Equal(t, 6, fn.StartLine)
	assert.Equal(t, 12, fn.EndLine)
	assert.True(t, fn.HasReturnType)
	assert.Equal(t, 9, fn.DocWords)

	require.Len(t, fn.Params, 4)
	assert.Equal(t, "items", fn.Params[0].Name)
	assert.False(t, fn.Params[0].HasDefault)
	assert.True(t, fn.Params[1].HasDefault)
	assert.True(t, fn.Params[2].IsBoolFlag)
	assert.True(t, fn.Params[3].IsBoolFlag)
	assert.True(t, fn.Params[3].HasType)

	require.Len(t, u.Imports, 3)
	assert.True(t, u.Imports[1].Relative)
	assert.False(t, u.Imports[2].Relative)
}

func TestParsePython_MethodSkipsSelf(t *testing.T) {
	src := `class OrderBook:
    """Tracks open orders keyed by their identifier."""

    def add(self, order_id, price):
        self.orders[order_id] = price
`
	u, err := Parse(File{Path: "book.py", Content: src})
	require.NoError(t, err)

	require.Len(t, u.Classes, 1)
	assert.Equal(t, "OrderBook", u.Classes[0].Name)
	assert.Equal(t, 7, u.Classes[0].DocWords)

	require.Len(t, u.Functions, 1)
	require.Len(t, u.Functions[0].Params, 2)
	assert.Equal(t, "order_id", u.Functions[0].Params[0].Name)
}

func TestParsePython_MultilineSignature(t *testing.T) {
	src := `def configure(
    host,
    port=8080,
    debug=False,
):
    return host, port
`
	u, err := Parse(File{Path: "cfg.py", Content: src})
	require.NoError(t, err)

	require.Len(t, u.Functions, 1)
	fn := u.Functions[0]
	assert.Equal(t, 1, fn.StartLine)
	require.Len(t, fn.Params, 3)
	assert.True(t, fn.Params[2].IsBoolFlag)
	assert.Equal(t, 6, fn.EndLine)
}

func TestParseGo_Function(t *testing.T) {
	src := `package cache

import (
	"fmt"
	"sync"
)

// Get returns the cached value for key, loading it on first use.
func Get(key string, force bool) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	return key, nil
}
`
	u, err := Parse(File{Path: "cache.go", Content: src})
	require.NoError(t, err)

	require.Len(t, u.Imports, 2)
	assert.Equal(t, "fmt", u.Imports[0].Module)

	require.Len(t, u.Functions, 1)
	fn := u.Functions[0]
	assert.Equal(t, "Get", fn.Name)
	assert.Equal(t, 9, fn.StartLine)
	assert.Equal(t, 14, fn.EndLine)
	assert.True(t, fn.HasReturnType)
	assert.Equal(t, 12, fn.DocWords)

	require.Len(t, fn.Params, 2)
	assert.True(t, fn.Params[1].IsBoolFlag)
}

func TestParseJS_Function(t *testing.T) {
	src := `import { render } from './view';

export async function update(state, force = false) {
  if (force) {
    render(state);
  }
}

const clamp = (n, lo, hi) => {
  return Math.min(Math.max(n, lo), hi);
};
`
	u, err := Parse(File{Path: "app.js", Content: src})
	require.NoError(t, err)

	require.Len(t, u.Imports, 1)
	assert.True(t, u.Imports[0].Relative)

	require.Len(t, u.Functions, 2)
	assert.Equal(t, "update", u.Functions[0].Name)
	assert.True(t, u.Functions[0].Params[1].IsBoolFlag)
	assert.Equal(t, "clamp", u.Functions[1].Name)
	assert.Equal(t, 11, u.Functions[1].EndLine)
}

func TestLineChanged(t *testing.T) {
	u := &Unit{ChangedLines: map[int]bool{3: true, 7: true}}
	assert.True(t, u.LineChanged(3))
	assert.False(t, u.LineChanged(4))
	assert.True(t, u.LineChanged(0), "whole-file findings are always in scope")

	full := &Unit{}
	assert.True(t, full.LineChanged(42))
}
