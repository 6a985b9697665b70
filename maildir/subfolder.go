package maildir

import (
	"io/fs"
	"strings"
)

// IsSubfolderDirectory reports whether a directory entry is a visible
// sub-folder. Hidden entries (including containers) and the folder's own
// new, cur and tmp directories are not sub-folders.
func IsSubfolderDirectory(entry fs.DirEntry) bool {
	if !entry.IsDir() {
		return false
	}
	name := entry.Name()
	return name != "" && !strings.HasPrefix(name, ".") && !isStorageDir(name)
}
