package filename

import (
	"path"
	"strings"
)

// DefaultBase replaces names that sanitize to nothing.
const DefaultBase = "image"

// SafeBase derives a filesystem-safe base name from a client-supplied file
// name: directory and extension are dropped, every byte outside
// [A-Za-z0-9_-] becomes '_', and the result is lowercased.
func SafeBase(original string) string {
	// clients on Windows send backslash separated names
	name := path.Base(strings.ReplaceAll(original, `\`, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))

	if original == "" || name == "" || name == "." || name == "/" {
		return DefaultBase
	}

	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}

// Ext returns the lowercased extension of a client-supplied file name.
func Ext(original string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(original, `\`, "/")))
}
