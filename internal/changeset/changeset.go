// Package changeset assembles the set of files a review run operates on,
// either by walking paths on disk or by parsing a git diff against a base
// ref. Ignore rules and test-file detection are applied here so the engine
// receives a clean, final file list.
package changeset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/git"
	"github.com/gavelhq/gavel/internal/source"
)

// skipDirs are never descended into when walking paths.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	"venv": true, ".venv": true, "vendor": true, "dist": true,
	"build": true, ".tox": true,
}

// FromPaths collects the reviewable files under the given paths. Directories
// are walked recursively; unsupported and ignored files are dropped. The
// returned list is sorted by path so runs are deterministic.
func FromPaths(paths []string, cfg *config.Config) ([]source.File, error) {
	var files []source.File
	seen := map[string]bool{}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			f, ok, err := loadFile(p, cfg)
			if err != nil {
				return nil, err
			}
			if ok && !seen[f.Path] {
				seen[f.Path] = true
				files = append(files, f)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") && path != p {
					return filepath.SkipDir
				}
				return nil
			}
			f, ok, err := loadFile(path, cfg)
			if err != nil {
				return err
			}
			if ok && !seen[f.Path] {
				seen[f.Path] = true
				files = append(files, f)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// FromDiff builds a change set from the git diff between base and the
// working tree at repoPath. Only files still present after the diff are
// included, each restricted to its added lines.
func FromDiff(client git.Client, repoPath, base string, cfg *config.Config) ([]source.File, error) {
	root, err := client.RepoRoot(repoPath)
	if err != nil {
		return nil, err
	}
	raw, err := client.Diff(repoPath, base)
	if err != nil {
		return nil, err
	}
	return FromUnifiedDiff(root, raw, cfg)
}

// FromUnifiedDiff builds a change set from raw unified diff text against the
// checked-out tree at root. This is the shared path for local diffs and PR
// diffs fetched from a forge.
func FromUnifiedDiff(root, raw string, cfg *config.Config) ([]source.File, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	var files []source.File
	for _, df := range parsed {
		if df.IsDelete || df.IsBinary {
			continue
		}
		rel := df.NewName
		if rel == "" {
			rel = df.OldName
		}
		changed := changedLines(df)
		if len(changed) == 0 {
			continue
		}

		f, ok, err := loadFile(filepath.Join(root, rel), cfg)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		f.Path = rel
		f.IsTest = cfg.Review.Rules.TestFiles.Matches(rel)
		f.ChangedLines = changed
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// changedLines returns the added line numbers of one diff file, in new-file
// coordinates.
func changedLines(df *gitdiff.File) map[int]bool {
	lines := map[int]bool{}
	for _, frag := range df.TextFragments {
		n := int(frag.NewPosition)
		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpAdd:
				lines[n] = true
				n++
			case gitdiff.OpContext:
				n++
			}
		}
	}
	return lines
}

// loadFile reads one candidate file. ok is false for unsupported or ignored
// paths; that is routine filtering, not an error.
func loadFile(path string, cfg *config.Config) (source.File, bool, error) {
	if source.DetectLanguage(path) == source.LangUnknown {
		return source.File{}, false, nil
	}
	if ignored(path, cfg) {
		return source.File{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return source.File{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	clean := filepath.ToSlash(path)
	return source.File{
		Path:    clean,
		Content: string(data),
		IsTest:  cfg.Review.Rules.TestFiles.Matches(clean),
	}, true, nil
}

// ignored applies the configured ignore_files and ignore_paths globs.
func ignored(path string, cfg *config.Config) bool {
	base := filepath.Base(path)
	norm := filepath.ToSlash(path)
	for _, pat := range cfg.GitHub.IgnoreFiles {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	for _, pat := range cfg.GitHub.IgnorePaths {
		if ok, _ := filepath.Match(pat, norm); ok {
			return true
		}
		if strings.Contains(norm, "/"+strings.Trim(pat, "/*")+"/") {
			return true
		}
	}
	return false
}
