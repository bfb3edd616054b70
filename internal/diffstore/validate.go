package diffstore

import (
	"fmt"
	"strings"
)

const (
	// MaxRefLen bounds any candidate git ref.
	MaxRefLen = 256
	// MaxPathLen bounds any candidate path.
	MaxPathLen = 4096
)

// shellMetacharacters are rejected outright in refs and paths passed to
// subprocess invocations, even though every invocation in this package
// already uses exec.Command's argv form (never a shell), as defense in
// depth against a future caller shelling out differently.
const shellMetacharacters = "|&;$()<>`\\\"'*?[]{}\n\r"

// ValidateRef rejects refs that are empty, too long, start with a
// non-alphanumeric character (which would let an attacker smuggle a git
// option like "--upload-pack=..."), or contain shell metacharacters.
func ValidateRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("ref must not be empty")
	}
	if len(ref) > MaxRefLen {
		return fmt.Errorf("ref exceeds %d characters", MaxRefLen)
	}
	if !isAlphanumeric(ref[0]) {
		return fmt.Errorf("ref %q must start with an alphanumeric character", ref)
	}
	if strings.ContainsAny(ref, shellMetacharacters) {
		return fmt.Errorf("ref %q contains disallowed characters", ref)
	}
	return nil
}

// ValidatePath rejects paths that are empty, too long, contain path
// traversal segments, or contain shell metacharacters.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path must not be empty")
	}
	if len(path) > MaxPathLen {
		return fmt.Errorf("path exceeds %d characters", MaxPathLen)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path %q contains path traversal", path)
	}
	if strings.ContainsAny(path, shellMetacharacters) {
		return fmt.Errorf("path %q contains disallowed characters", path)
	}
	return nil
}

func isAlphanumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
