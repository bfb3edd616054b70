package diffstore

import "strings"

// Canonicalize strips the "a/"/"b/" diff prefixes, "./" segments, and any
// leading "/" from a raw git path, producing the canonical form every
// downstream stage consumes. It is the only producer of canonical paths in
// this system; callers must never hand-normalize a path elsewhere.
func Canonicalize(raw string) string {
	p := raw
	p = strings.TrimPrefix(p, "a/")
	p = strings.TrimPrefix(p, "b/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p
}

// CanonicalizeAll canonicalizes every path in files in place order,
// returning a new slice.
func CanonicalizeAll(files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = Canonicalize(f)
	}
	return out
}
