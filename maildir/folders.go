package maildir

import (
	"context"
	"os"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/infodancer/folderstore/errors"
)

// statConcurrency bounds the number of folders StatAll reads at once.
const statConcurrency = 4

// FolderStat holds the statistics of one folder.
type FolderStat struct {
	Folder     string
	Count      int
	TotalBytes int64
}

// CreateFolder implements folderstore.FolderManager.
func (s *MaildirStore) CreateFolder(ctx context.Context, mailbox, folder string) error {
	md, fp, err := s.folder(mailbox, folder)
	if err != nil {
		return err
	}
	if fp.IsRoot() {
		return pkgerrors.Wrap(errors.ErrInvalidFolderPath, "cannot create the root folder")
	}

	if fp.Parent().IsRoot() {
		if _, err := s.ensureInbox(mailbox); err != nil {
			return err
		}
	} else if _, err := s.existingFolder(mailbox, fp.Parent().String()); err != nil {
		return err
	}

	if md.Exists() {
		return pkgerrors.Wrapf(errors.ErrFolderExists, "folder %q", fp.String())
	}
	if err := md.Create(); err != nil {
		return pkgerrors.Wrapf(err, "could not create folder %q", fp.String())
	}
	s.log.WithField("mailbox", mailbox).WithField("folder", fp.String()).Debug("Folder created")
	return nil
}

// ListFolders implements folderstore.FolderManager.
func (s *MaildirStore) ListFolders(ctx context.Context, mailbox, parent string) ([]string, error) {
	m, err := s.mapper(mailbox)
	if err != nil {
		return nil, err
	}
	fp := ParseFolderPath(parent)
	if err := m.ValidateFolder(fp); err != nil {
		return nil, err
	}
	if !fp.IsRoot() {
		if _, err := s.existingFolder(mailbox, parent); err != nil {
			return nil, err
		}
	}

	var names []string
	switch m.Layout() {
	case LayoutNested:
		names, err = listNestedFolders(m, fp)
	default:
		names, err = listDottedFolders(m, fp)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// listNestedFolders lists the sub-folders kept in parent's container.
func listNestedFolders(m *PathMapper, parent FolderPath) ([]string, error) {
	container, err := m.FolderFSPath(parent, PathContainer)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(container)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if IsSubfolderDirectory(entry) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// listDottedFolders lists the direct children of parent among the dotted
// folder directories under the mailbox root.
func listDottedFolders(m *PathMapper, parent FolderPath) ([]string, error) {
	entries, err := os.ReadDir(m.Root())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder, ok := m.FolderFromDirName(entry.Name())
		if !ok || len(folder) != len(parent)+1 || !folder.HasPrefix(parent) {
			continue
		}
		names = append(names, folder.Name())
	}
	return names, nil
}

// DeleteFolder implements folderstore.FolderManager.
func (s *MaildirStore) DeleteFolder(ctx context.Context, mailbox, folder string) error {
	fp := ParseFolderPath(folder)
	if fp.IsRoot() {
		return pkgerrors.Wrap(errors.ErrInvalidFolderPath, "cannot delete the root folder")
	}
	md, err := s.existingFolder(mailbox, folder)
	if err != nil {
		return err
	}

	children, err := s.ListFolders(ctx, mailbox, folder)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return pkgerrors.Wrapf(errors.ErrFolderNotEmpty, "folder %q", fp.String())
	}

	m, err := s.mapper(mailbox)
	if err != nil {
		return err
	}
	container, err := m.FolderFSPath(fp, PathContainer)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(container); err != nil {
		return err
	}
	if err := os.RemoveAll(md.Path()); err != nil {
		return pkgerrors.Wrapf(err, "could not delete folder %q", fp.String())
	}
	s.log.WithField("mailbox", mailbox).WithField("folder", fp.String()).Debug("Folder deleted")
	return nil
}

// AllFolders returns every folder of a mailbox, root folder first, each
// followed by its sub-folders.
func (s *MaildirStore) AllFolders(ctx context.Context, mailbox string) ([]FolderPath, error) {
	var walk func(parent FolderPath) ([]FolderPath, error)
	walk = func(parent FolderPath) ([]FolderPath, error) {
		result := []FolderPath{parent}
		names, err := s.ListFolders(ctx, mailbox, parent.String())
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			sub, err := walk(parent.Child(name))
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		}
		return result, nil
	}
	return walk(nil)
}

// StatAll returns statistics for every folder of a mailbox, in the order
// of AllFolders.
func (s *MaildirStore) StatAll(ctx context.Context, mailbox string) ([]FolderStat, error) {
	folders, err := s.AllFolders(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	stats := make([]FolderStat, len(folders))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i, fp := range folders {
		i, name := i, fp.String()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			count, size, err := s.Stat(ctx, mailbox, name)
			if err != nil {
				return pkgerrors.Wrapf(err, "stat folder %q", name)
			}
			stats[i] = FolderStat{Folder: name, Count: count, TotalBytes: size}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
