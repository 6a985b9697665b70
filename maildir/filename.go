package maildir

import "strings"

// InfoSeparator separates the unique id of a message from its flags.
const InfoSeparator = ":2,"

// BuildFilename returns the filename for a message with the given id and
// flags. The separator is always emitted, so a message with no flags is
// named "id:2,".
func BuildFilename(id string, flags Flags) string {
	return id + InfoSeparator + BuildFlags(flags)
}

// ExtractID returns the unique identifier part of a message filename.
// Eg: for "1071577232.28549.m03s:2,RS" it returns "1071577232.28549.m03s".
// A filename without an info part is all id.
func ExtractID(filename string) string {
	if i := strings.Index(filename, InfoSeparator); i >= 0 {
		return filename[:i]
	}
	return filename
}

// ExtractFlags returns the flags encoded in a message filename. A filename
// without an info part has no flags.
func ExtractFlags(filename string) Flags {
	i := strings.Index(filename, InfoSeparator)
	if i < 0 {
		return 0
	}
	return ParseFlags(filename[i+len(InfoSeparator):])
}

// ValidID reports whether id can be used as the id part of a filename.
func ValidID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/:\x00")
}

// IDMatcher matches message filenames by their id part only, so a message
// can be found after its flags (and therefore its filename) have changed.
type IDMatcher struct {
	id string
}

// NewIDMatcher returns a matcher for the id of the given filename.
func NewIDMatcher(filename string) IDMatcher {
	return IDMatcher{id: ExtractID(filename)}
}

// Matches reports whether other has the same id as the reference filename.
func (m IDMatcher) Matches(other string) bool {
	return ExtractID(other) == m.id
}

// FindByID returns the first name in names whose id is id.
func FindByID(names []string, id string) (string, bool) {
	m := NewIDMatcher(id)
	for _, name := range names {
		if m.Matches(name) {
			return name, true
		}
	}
	return "", false
}
