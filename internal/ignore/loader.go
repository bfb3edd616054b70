package ignore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadIgnoreFile reads and compiles the ignore file at path, refusing
// symlinks that escape repoRoot and enforcing MaxIgnoreFileBytes. A
// missing ignore file is not an error: it compiles to an empty Matcher.
func LoadIgnoreFile(repoRoot, path string) (*Matcher, error) {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return CompileIgnoreFile("")
	}
	if err != nil {
		return nil, fmt.Errorf("stat ignore file: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, fmt.Errorf("resolve ignore file symlink: %w", err)
		}
		if !withinRoot(repoRoot, target) {
			return nil, fmt.Errorf("ignore file %q is a symlink escaping the repo root", path)
		}
	}

	if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
		// Non-file paths (directories, sockets, devices) are ignored rather
		// than erroring: an ignore file is optional.
		return CompileIgnoreFile("")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close()

	limited := io.LimitReader(f, MaxIgnoreFileBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	if len(raw) > MaxIgnoreFileBytes {
		return nil, fmt.Errorf("ignore file exceeds %d bytes", MaxIgnoreFileBytes)
	}

	return CompileIgnoreFile(string(raw))
}

func withinRoot(root, target string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
