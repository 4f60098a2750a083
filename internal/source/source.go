// Package source turns raw change-set files into structured SourceUnits:
// detected language, functions, classes, imports, and a normalized token
// stream. It is the language-facing boundary of the review engine; everything
// above it works on these structures, never on raw syntax.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Language identifies the detected source language of a unit.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = ""
)

// DetectLanguage maps a file path to a language by extension.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return LangPython
	case ".go":
		return LangGo
	case ".js", ".jsx", ".ts", ".tsx", ".mjs":
		return LangJavaScript
	default:
		return LangUnknown
	}
}

// File is one raw entry from the change-set provider, already filtered by
// ignore_files/ignore_paths upstream.
type File struct {
	Path    string
	Content string
	IsTest  bool
	// Coverage is an externally supplied coverage percentage for this file;
	// nil when unknown. The engine never computes coverage itself.
	Coverage *float64
	// ChangedLines restricts findings to these line numbers when non-nil
	// (diff reviews). A nil map means the whole file is reviewable.
	ChangedLines map[int]bool
}

// ParseError reports that a file's structural representation could not be
// built. The caller skips the file and continues; the error is never
// swallowed silently.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

// Param is one declared function parameter.
type Param struct {
	Name       string
	HasType    bool
	HasDefault bool
	IsBoolFlag bool // default value is a boolean literal
}

// Function is one parsed function or method.
type Function struct {
	Name          string
	StartLine     int // line of the def/func keyword, 1-based
	BodyStart     int // first line after the signature
	EndLine       int // last line belonging to the body, inclusive
	Indent        int // leading whitespace width of the definition line
	Params        []Param
	HasReturnType bool
	Doc           string // docstring/doc comment text, "" if absent
	DocWords      int    // words in the docstring/doc comment, 0 if absent
}

// Class is one parsed class or type declaration.
type Class struct {
	Name     string
	Line     int
	Doc      string
	DocWords int
}

// Import is one import statement.
type Import struct {
	Raw      string
	Module   string
	Line     int
	Relative bool
}

// Unit is one reviewed file: raw text plus its parsed structural
// representation. Immutable after Parse.
type Unit struct {
	Path         string
	Content      string
	Lines        []string
	Language     Language
	IsTest       bool
	Coverage     *float64
	ChangedLines map[int]bool

	Functions []Function
	Classes   []Class
	Imports   []Import
}

// Parse builds a Unit from a raw file. It fails with *ParseError when the
// language cannot be detected or the content is not reviewable text.
func Parse(f File) (*Unit, error) {
	lang := DetectLanguage(f.Path)
	if lang == LangUnknown {
		return nil, &ParseError{Path: f.Path, Reason: "unsupported language"}
	}
	if !utf8.ValidString(f.Content) || strings.ContainsRune(f.Content, 0) {
		return nil, &ParseError{Path: f.Path, Reason: "content is not valid UTF-8 text"}
	}

	u := &Unit{
		Path:         f.Path,
		Content:      f.Content,
		Lines:        strings.Split(f.Content, "\n"),
		Language:     lang,
		IsTest:       f.IsTest,
		Coverage:     f.Coverage,
		ChangedLines: f.ChangedLines,
	}

	switch lang {
	case LangPython:
		parsePython(u)
	default:
		parseBraced(u)
	}
	return u, nil
}

// LineChanged reports whether findings on the given line are in scope for
// this unit. Line 0 findings (whole-file) are always in scope.
func (u *Unit) LineChanged(line int) bool {
	if u.ChangedLines == nil || line <= 0 {
		return true
	}
	return u.ChangedLines[line]
}

// indentWidth returns the leading whitespace width of a line, tabs counted
// as one column each.
func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			n++
			continue
		}
		break
	}
	return n
}

// countWords counts whitespace-separated words.
func countWords(s string) int {
	return len(strings.Fields(s))
}
