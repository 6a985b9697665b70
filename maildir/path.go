package maildir

import (
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/infodancer/folderstore/errors"
)

// Names of the message storage directories inside every folder.
const (
	TmpDir = "tmp"
	NewDir = "new"
	CurDir = "cur"
)

// containerSuffix marks the directory holding a folder's sub-folders.
const containerSuffix = ".directory"

// FolderPath is a logical folder hierarchy, outermost folder first.
// An empty FolderPath is the root folder (INBOX).
type FolderPath []string

// ParseFolderPath splits a "/"-separated folder name. The empty string and
// "/" denote the root folder. Components are not validated here.
func ParseFolderPath(s string) FolderPath {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return FolderPath(strings.Split(s, "/"))
}

// String returns the folder path joined with "/".
func (p FolderPath) String() string {
	return strings.Join(p, "/")
}

// IsRoot reports whether p is the root folder.
func (p FolderPath) IsRoot() bool {
	return len(p) == 0
}

// Name returns the last component, or "" for the root folder.
func (p FolderPath) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the parent folder. The root folder is its own parent.
func (p FolderPath) Parent() FolderPath {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Child returns the sub-folder of p named name.
func (p FolderPath) Child(name string) FolderPath {
	child := make(FolderPath, len(p), len(p)+1)
	copy(child, p)
	return append(child, name)
}

// Equal reports whether p and other name the same folder.
func (p FolderPath) Equal(other FolderPath) bool {
	if len(p) != len(other) {
		return false
	}
	return p.HasPrefix(other)
}

// HasPrefix reports whether prefix is p or one of its ancestors.
func (p FolderPath) HasPrefix(prefix FolderPath) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// PathMode selects which directory of a folder FolderFSPath returns.
type PathMode int

const (
	// PathRoot is the folder itself. Eg: ~/Mail/.Work
	PathRoot PathMode = iota
	// PathNew holds unread messages. Eg: ~/Mail/.Work/new
	PathNew
	// PathCur holds messages that have been seen. Eg: ~/Mail/.Work/cur
	PathCur
	// PathTmp is used for reliable delivery. Eg: ~/Mail/.Work/tmp
	PathTmp
	// PathContainer holds sub-folders. Eg: ~/Mail/.Work.directory
	PathContainer
)

func (m PathMode) String() string {
	switch m {
	case PathRoot:
		return "root"
	case PathNew:
		return NewDir
	case PathCur:
		return CurDir
	case PathTmp:
		return TmpDir
	case PathContainer:
		return "container"
	}
	return "unknown"
}

// ParsePathMode parses the String form of a PathMode.
func ParsePathMode(s string) (PathMode, error) {
	for m := PathRoot; m <= PathContainer; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, pkgerrors.Wrapf(errors.ErrInvalidPathMode, "%q", s)
}

// Layout selects how a folder hierarchy is laid out on disk.
type Layout int

const (
	// LayoutMaildirPlusPlus stores every folder directly under the root with
	// a dotted name: Work/Projects is <root>/.Work.Projects.
	LayoutMaildirPlusPlus Layout = iota
	// LayoutNested stores sub-folders inside their parent's container:
	// Work/Projects is <root>/.Work.directory/Projects.
	LayoutNested
)

func (l Layout) String() string {
	switch l {
	case LayoutMaildirPlusPlus:
		return "maildirpp"
	case LayoutNested:
		return "nested"
	}
	return "unknown"
}

// ParseLayout parses the String form of a Layout. The empty string selects
// LayoutMaildirPlusPlus.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "maildirpp":
		return LayoutMaildirPlusPlus, nil
	case "nested":
		return LayoutNested, nil
	}
	return 0, pkgerrors.Wrapf(errors.ErrStoreConfigInvalid, "unknown layout %q", s)
}

// PathMapper computes the filesystem paths of folders under a root directory.
// It never touches the filesystem.
type PathMapper struct {
	root   string
	layout Layout
}

// NewPathMapper returns a PathMapper for folders stored under root.
func NewPathMapper(root string, layout Layout) *PathMapper {
	return &PathMapper{root: root, layout: layout}
}

// Root returns the root directory.
func (m *PathMapper) Root() string {
	return m.root
}

// Layout returns the on-disk layout.
func (m *PathMapper) Layout() Layout {
	return m.layout
}

// FolderFSPath returns the filesystem path of folder for the given mode,
// using the Maildir++ layout.
func FolderFSPath(root string, folder FolderPath, mode PathMode) (string, error) {
	return NewPathMapper(root, LayoutMaildirPlusPlus).FolderFSPath(folder, mode)
}

// FolderFSPath returns the filesystem path of folder for the given mode.
func (m *PathMapper) FolderFSPath(folder FolderPath, mode PathMode) (string, error) {
	if mode < PathRoot || mode > PathContainer {
		return "", pkgerrors.Wrapf(errors.ErrInvalidPathMode, "mode %d", int(mode))
	}
	if err := m.ValidateFolder(folder); err != nil {
		return "", err
	}

	var path string
	switch m.layout {
	case LayoutNested:
		path = m.nestedPath(folder, mode)
	default:
		path = m.dottedPath(folder, mode)
	}

	switch mode {
	case PathNew:
		path = filepath.Join(path, NewDir)
	case PathCur:
		path = filepath.Join(path, CurDir)
	case PathTmp:
		path = filepath.Join(path, TmpDir)
	}
	return path, nil
}

func (m *PathMapper) dottedPath(folder FolderPath, mode PathMode) string {
	if folder.IsRoot() {
		return m.root
	}
	name := "." + strings.Join(folder, ".")
	if mode == PathContainer {
		name += containerSuffix
	}
	return filepath.Join(m.root, name)
}

func (m *PathMapper) nestedPath(folder FolderPath, mode PathMode) string {
	count := len(folder) - 1
	if mode == PathContainer {
		count = len(folder)
	}

	path := m.root
	for i := 0; i < count; i++ {
		path = filepath.Join(path, "."+folder[i]+containerSuffix)
	}
	if !folder.IsRoot() && mode != PathContainer {
		path = filepath.Join(path, folder.Name())
	}
	return path
}

// ValidateFolder checks that every component of folder can be mapped to a
// directory name under the mapper's layout.
func (m *PathMapper) ValidateFolder(folder FolderPath) error {
	for _, comp := range folder {
		if err := m.validateComponent(comp); err != nil {
			return pkgerrors.Wrapf(err, "folder %q", folder.String())
		}
	}
	return nil
}

func (m *PathMapper) validateComponent(comp string) error {
	switch {
	case comp == "":
		return pkgerrors.Wrap(errors.ErrInvalidFolderPath, "empty component")
	case strings.HasPrefix(comp, "."):
		return pkgerrors.Wrapf(errors.ErrInvalidFolderPath, "component %q starts with '.'", comp)
	case strings.ContainsAny(comp, "/\x00"):
		return pkgerrors.Wrapf(errors.ErrInvalidFolderPath, "component %q contains a path separator", comp)
	}

	switch m.layout {
	case LayoutNested:
		if isStorageDir(comp) {
			return pkgerrors.Wrapf(errors.ErrInvalidFolderPath, "component %q is reserved", comp)
		}
	default:
		if strings.Contains(comp, ".") {
			return pkgerrors.Wrapf(errors.ErrInvalidFolderPath, "component %q contains '.'", comp)
		}
		// ".A.directory" is the container of A, so it cannot also be A/directory.
		if "."+comp == containerSuffix {
			return pkgerrors.Wrapf(errors.ErrInvalidFolderPath, "component %q is reserved", comp)
		}
	}
	return nil
}

// FolderFromDirName decodes the name of a Maildir++ folder directory found
// directly under the root. It returns false for names that are not folder
// directories, including containers.
func (m *PathMapper) FolderFromDirName(name string) (FolderPath, bool) {
	if m.layout != LayoutMaildirPlusPlus {
		return nil, false
	}
	if len(name) < 2 || name[0] != '.' || strings.HasSuffix(name, containerSuffix) {
		return nil, false
	}
	folder := FolderPath(strings.Split(name[1:], "."))
	if m.ValidateFolder(folder) != nil {
		return nil, false
	}
	return folder, true
}

func isStorageDir(name string) bool {
	return name == NewDir || name == CurDir || name == TmpDir
}
