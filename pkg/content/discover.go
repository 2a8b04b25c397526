package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the optional ignore file at the content root. It uses
// gitignore syntax and filters discovery and fingerprinting alike.
const IgnoreFileName = ".graphlordignore"

// File is a discovered markdown content file.
type File struct {
	Path    string // absolute path
	RelPath string // slash-separated path relative to the content root
}

// Discover walks the content root and returns every markdown file, sorted by
// relative path. Hidden directories (dot-prefixed) are skipped, as is
// anything matched by the root's ignore file.
func Discover(root string) ([]File, error) {
	matcher, err := loadIgnore(root)
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || (matcher != nil && matcher.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		files = append(files, File{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover content in %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// Fingerprint hashes the discovered file set of a content root. The hash
// covers relative paths and modification times, not file contents, so it is
// cheap enough to poll. Deterministic for an unchanged tree.
func Fingerprint(root string) (string, error) {
	files, err := Discover(root)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", f.Path, err)
		}
		fmt.Fprintf(h, "%s\x00%d\n", f.RelPath, info.ModTime().Unix())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func loadIgnore(root string) (*ignore.GitIgnore, error) {
	path := filepath.Join(root, IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return matcher, nil
}
