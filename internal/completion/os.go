package completion

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// osFileSystem is the default FileSystem, backed by the real filesystem
type osFileSystem struct{}

func (osFileSystem) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		isDir := entry.IsDir()
		if !isDir && entry.Type()&os.ModeSymlink != 0 {
			// A symlink to a directory completes like a directory.
			if info, statErr := os.Stat(filepath.Join(path, entry.Name())); statErr == nil {
				isDir = info.IsDir()
			}
		}
		out = append(out, DirEntry{Name: entry.Name(), IsDir: isDir})
	}
	return out, nil
}

// osPathFinder is the default PathFinder, scanning the PATH environment
// variable
type osPathFinder struct{}

func (osPathFinder) FindExecutablesWithPrefix(prefix string) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if !isExecutableEntry(dir, entry) {
				continue
			}
			if runtime.GOOS == "windows" {
				name = trimExecutableExt(name)
			}
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func isExecutableEntry(dir string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return hasExecutableExt(entry.Name())
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Mode()&0111 != 0
}

func hasExecutableExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range executableExts() {
		if ext == e {
			return true
		}
	}
	return false
}

func trimExecutableExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range executableExts() {
		if ext == e {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

func executableExts() []string {
	if pathext := os.Getenv("PATHEXT"); pathext != "" {
		exts := []string{}
		for _, e := range strings.Split(pathext, ";") {
			if e != "" {
				exts = append(exts, strings.ToLower(e))
			}
		}
		return exts
	}
	return []string{".exe", ".cmd", ".bat", ".com"}
}
