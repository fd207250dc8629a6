package theme

import (
	"fmt"
	"strings"
)

// ParseError is returned when theme source is not valid YAML. No partial theme
// is produced.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed theme source: %v", e.Err)
	}
	return fmt.Sprintf("malformed theme source %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnresolvedReferenceError is returned in strict mode when a variable reference
// points to a key which has not been defined yet.
type UnresolvedReferenceError struct {
	Key string // key being resolved
	Ref string // reference as written, including '$'
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unknown variable reference %s in theme key %q", e.Ref, e.Key)
}

// CycleError is returned when extends chain refers back to a theme which is
// still being loaded.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "theme extends cycle: " + strings.Join(e.Chain, " -> ")
}
