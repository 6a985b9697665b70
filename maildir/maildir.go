package maildir

import (
	"io"
	"os"
	"path/filepath"

	gomaildir "github.com/emersion/go-maildir"
	pkgerrors "github.com/pkg/errors"

	"github.com/infodancer/folderstore/errors"
)

// Maildir represents the message storage of a single folder.
type Maildir struct {
	path string
	ids  *IDGenerator
}

// New creates a Maildir instance for the given path.
// It does not create the directory; use Create() for that.
func New(path string) *Maildir {
	return &Maildir{path: path, ids: defaultGenerator}
}

// Path returns the maildir path.
func (m *Maildir) Path() string {
	return m.path
}

// Create creates the maildir directory and its new, cur and tmp directories.
// Missing parent directories are created too.
func (m *Maildir) Create() error {
	if err := os.MkdirAll(m.path, 0700); err != nil {
		return err
	}
	return gomaildir.Dir(m.path).Init()
}

// Exists checks if the maildir exists and has the required structure.
func (m *Maildir) Exists() bool {
	for _, sub := range []string{NewDir, CurDir, TmpDir} {
		info, err := os.Stat(filepath.Join(m.path, sub))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// Deliver writes a message to the maildir using the safe delivery process.
// It writes to tmp/ first, then moves to new/. The returned id is also the
// message's filename in new/.
func (m *Maildir) Deliver(message io.Reader) (string, error) {
	if !m.Exists() {
		return "", errors.ErrMaildirNotFound
	}

	id := m.ids.Generate()
	tmpPath := filepath.Join(m.path, TmpDir, id)
	newPath := filepath.Join(m.path, NewDir, id)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(f, message)
	if syncErr := f.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, newPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	return id, nil
}

// ListNew returns the filenames of messages in new/.
func (m *Maildir) ListNew() ([]string, error) {
	return m.listDir(NewDir)
}

// ListCur returns the filenames of messages in cur/.
func (m *Maildir) ListCur() ([]string, error) {
	return m.listDir(CurDir)
}

func (m *Maildir) listDir(subdir string) ([]string, error) {
	dir := filepath.Join(m.path, subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrMaildirNotFound
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && entry.Name()[0] != '.' {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// Find returns the path of the message with the given id, looking in cur/
// first, then new/.
func (m *Maildir) Find(id string) (string, error) {
	if !ValidID(id) {
		return "", pkgerrors.Wrapf(errors.ErrInvalidMessageID, "id %q", id)
	}
	for _, sub := range []string{CurDir, NewDir} {
		names, err := m.listDir(sub)
		if err != nil {
			return "", err
		}
		if name, ok := FindByID(names, id); ok {
			return filepath.Join(m.path, sub, name), nil
		}
	}
	return "", pkgerrors.Wrapf(errors.ErrMessageNotFound, "id %q", id)
}

// Open opens a message file for reading.
func (m *Maildir) Open(id string) (*os.File, error) {
	path, err := m.Find(id)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a message file.
func (m *Maildir) Remove(id string) error {
	path, err := m.Find(id)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Flags returns the current flags of a message.
func (m *Maildir) Flags(id string) (Flags, error) {
	path, err := m.Find(id)
	if err != nil {
		return 0, err
	}
	return ExtractFlags(filepath.Base(path)), nil
}

// SetFlags replaces the flags of a message. The message is moved to cur/
// if it was still in new/. It returns the message's new filename.
func (m *Maildir) SetFlags(id string, flags Flags) (string, error) {
	oldPath, err := m.Find(id)
	if err != nil {
		return "", err
	}
	name := BuildFilename(ExtractID(filepath.Base(oldPath)), flags)
	newPath := filepath.Join(m.path, CurDir, name)
	if oldPath == newPath {
		return name, nil
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return "", err
	}
	return name, nil
}

// MoveToSeen moves a message from new/ to cur/ and marks it as seen.
func (m *Maildir) MoveToSeen(id string) error {
	flags, err := m.Flags(id)
	if err != nil {
		return err
	}
	_, err = m.SetFlags(id, flags|FlagSeen)
	return err
}
