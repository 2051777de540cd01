package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RootPath is the inPath of a goal with no ancestors.
const RootPath = "/"

// JoinPath appends a goal id to its ancestor path. The trailing separator
// guarantees that two sibling ids sharing a string prefix never produce
// overlapping subtree ranges.
func JoinPath(inPath string, id uuid.UUID) string {
	if inPath == "" {
		inPath = RootPath
	}
	return inPath + id.String() + "/"
}

// NextPrefix returns the lexicographic successor of prefix: the smallest
// string greater than every string starting with prefix. Paths always end in
// '/', so incrementing the last byte never overflows.
func NextPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	b := []byte(prefix)
	b[len(b)-1]++
	return string(b)
}

// ValidatePath checks the structural shape of a materialized path: leading
// and trailing separators with uuid segments between. A failure here means
// the tree is corrupted and is treated as fatal by callers.
func ValidatePath(path string) error {
	if path == RootPath {
		return nil
	}
	if !strings.HasPrefix(path, "/") || !strings.HasSuffix(path, "/") {
		return fmt.Errorf("malformed path %q", path)
	}
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if _, err := uuid.Parse(seg); err != nil {
			return fmt.Errorf("malformed path segment %q in %q", seg, path)
		}
	}
	return nil
}
