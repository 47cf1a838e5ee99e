package monitor

import (
	"runtime"
	"strconv"
	"strings"
	"unsafe"
)

// HierarchyDelimiter separates the segments of a monitor name.
const HierarchyDelimiter = '.'

// validSegmentChar reports if c may appear in a name segment.
func validSegmentChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '[', ']', ',', '@', '$', '%', '(', ')', '<', '>':
		return true
	}
	return false
}

// validateName checks that name is the root name ("") or a sequence of
// non-empty, valid segments joined by the HierarchyDelimiter.
func validateName(name string) error {
	if name == "" {
		return nil
	}
	start := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == HierarchyDelimiter {
			if i == start {
				return &NameError{Name: name, Reason: "empty segment"}
			}
			start = i + 1
			continue
		}
		if !validSegmentChar(c) {
			return &NameError{Name: name, Reason: "invalid character " + strconv.QuoteRuneToASCII(rune(c))}
		}
	}
	if start == len(name) {
		return &NameError{Name: name, Reason: "empty segment"}
	}
	return nil
}

// splitName returns the segments of a validated name, nil for the root.
func splitName(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, string(HierarchyDelimiter))
}

// JoinName joins name segments with the HierarchyDelimiter, skipping empty
// segments so that JoinName("", "a") == "a".
func JoinName(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(HierarchyDelimiter)
		}
		b.WriteString(p)
	}
	return b.String()
}

// SanitizeSegment replaces every character that is not allowed in a single
// name segment, including the HierarchyDelimiter, with an underscore.
func SanitizeSegment(s string) string {
	var buf []byte // lazily allocated
	for i := 0; i < len(s); i++ {
		if !validSegmentChar(s[i]) {
			if buf == nil {
				buf = []byte(s)
			}
			buf[i] = '_'
		}
	}
	if buf == nil {
		return s
	}
	return *(*string)(unsafe.Pointer(&buf))
}

// GenerateName returns a monitor name derived from the fully qualified name
// of the calling function, with the optional suffix segments appended:
//
//	// in package github.com/acme/app, func (*Server) Handle
//	monitor.GenerateName("db")  // "github.com.acme.app.(_Server).Handle.db"
func GenerateName(suffix ...string) string {
	return generateName(2, suffix...)
}

func generateName(skip int, suffix ...string) string {
	fn := "unknown"
	if pc, _, _, ok := runtime.Caller(skip); ok {
		if f := runtime.FuncForPC(pc); f != nil {
			fn = f.Name()
		}
	}
	fn = strings.ReplaceAll(fn, "/", string(HierarchyDelimiter))

	parts := make([]string, 0, 8+len(suffix))
	for _, seg := range strings.Split(fn, string(HierarchyDelimiter)) {
		parts = append(parts, SanitizeSegment(seg))
	}
	for _, seg := range suffix {
		parts = append(parts, SanitizeSegment(seg))
	}
	return JoinName(parts...)
}
