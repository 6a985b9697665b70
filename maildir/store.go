package maildir

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/infodancer/folderstore"
	"github.com/infodancer/folderstore/errors"
)

// recentFlag is reported for messages that are still in new/.
const recentFlag = "\\Recent"

// Options configures a MaildirStore.
type Options struct {
	// MaildirSubdir is an optional subdirectory under each mailbox
	// (e.g., "Maildir" for paths like users/testuser/Maildir/).
	MaildirSubdir string

	// PathTemplate transforms mailbox names using the variables
	// {domain}, {localpart} and {email} (e.g., "{domain}/users/{localpart}").
	PathTemplate string

	// Layout selects how folders are laid out below the mailbox root.
	Layout Layout
}

// MaildirStore implements folderstore.MsgStore using the Maildir format.
// Each mailbox is a maildir whose folders are mapped to directories by a
// PathMapper.
type MaildirStore struct {
	basePath string
	opts     Options
	log      *logrus.Entry
}

// NewStore creates a new MaildirStore with the given base path.
func NewStore(basePath string, opts Options) *MaildirStore {
	return &MaildirStore{
		basePath: basePath,
		opts:     opts,
		log:      logrus.WithField("store", "maildir"),
	}
}

// splitEmail splits an email address into localpart and domain.
// If the email doesn't contain @, localpart is the entire input and domain is empty.
func splitEmail(email string) (localpart, domain string) {
	if idx := strings.LastIndex(email, "@"); idx >= 0 {
		return email[:idx], email[idx+1:]
	}
	return email, ""
}

// expandMailbox applies the path template to transform a mailbox name.
// If no template is set, the mailbox is returned unchanged.
func (s *MaildirStore) expandMailbox(mailbox string) string {
	if s.opts.PathTemplate == "" {
		return mailbox
	}
	localpart, domain := splitEmail(mailbox)
	result := s.opts.PathTemplate
	result = strings.ReplaceAll(result, "{domain}", domain)
	result = strings.ReplaceAll(result, "{localpart}", localpart)
	result = strings.ReplaceAll(result, "{email}", mailbox)
	return result
}

// mailboxPath returns the filesystem path of a mailbox's root folder.
// Returns an error if the resulting path would escape the base directory.
func (s *MaildirStore) mailboxPath(mailbox string) (string, error) {
	expandedMailbox := s.expandMailbox(mailbox)

	var candidate string
	if s.opts.MaildirSubdir != "" {
		candidate = filepath.Join(s.basePath, expandedMailbox, s.opts.MaildirSubdir)
	} else {
		candidate = filepath.Join(s.basePath, expandedMailbox)
	}

	cleanBase := filepath.Clean(s.basePath)
	cleanCandidate := filepath.Clean(candidate)

	// Add separator to prevent prefix matching (e.g., /base-other matching /base)
	if !strings.HasPrefix(cleanCandidate+string(filepath.Separator), cleanBase+string(filepath.Separator)) ||
		cleanCandidate == cleanBase {
		return "", pkgerrors.Wrapf(errors.ErrPathTraversal, "mailbox %q", mailbox)
	}

	return cleanCandidate, nil
}

// mapper returns the PathMapper for a mailbox.
func (s *MaildirStore) mapper(mailbox string) (*PathMapper, error) {
	root, err := s.mailboxPath(mailbox)
	if err != nil {
		return nil, err
	}
	return NewPathMapper(root, s.opts.Layout), nil
}

// folder resolves a mailbox folder to its Maildir.
func (s *MaildirStore) folder(mailbox, folder string) (*Maildir, FolderPath, error) {
	m, err := s.mapper(mailbox)
	if err != nil {
		return nil, nil, err
	}
	fp := ParseFolderPath(folder)
	path, err := m.FolderFSPath(fp, PathRoot)
	if err != nil {
		return nil, nil, err
	}
	return New(path), fp, nil
}

// existingFolder is folder, failing when the folder has not been created.
func (s *MaildirStore) existingFolder(mailbox, folder string) (*Maildir, error) {
	md, fp, err := s.folder(mailbox, folder)
	if err != nil {
		return nil, err
	}
	if !md.Exists() {
		if fp.IsRoot() {
			return nil, pkgerrors.Wrapf(errors.ErrMailboxNotFound, "mailbox %q", mailbox)
		}
		return nil, pkgerrors.Wrapf(errors.ErrFolderNotFound, "folder %q", fp.String())
	}
	return md, nil
}

// ensureInbox ensures the mailbox's root folder exists, creating it if necessary.
func (s *MaildirStore) ensureInbox(mailbox string) (*Maildir, error) {
	md, _, err := s.folder(mailbox, "")
	if err != nil {
		return nil, err
	}
	if !md.Exists() {
		if err := md.Create(); err != nil {
			return nil, pkgerrors.Wrapf(err, "could not create mailbox %q", mailbox)
		}
	}
	return md, nil
}

// deliveryTarget picks the folder a recipient's message is delivered to.
// The message goes to INBOX when the extension's folder does not exist.
func (s *MaildirStore) deliveryTarget(recipient folderstore.Recipient, inbox *Maildir) *Maildir {
	folder := recipient.Folder()
	if folder == "" {
		return inbox
	}
	md, _, err := s.folder(recipient.Address, folder)
	if err == nil && md.Exists() {
		return md
	}
	s.log.WithField("recipient", recipient.Address).
		WithField("folder", folder).
		Debug("Extension folder not found, delivering to INBOX")
	return inbox
}

// Deliver implements folderstore.DeliveryAgent.
func (s *MaildirStore) Deliver(ctx context.Context, envelope folderstore.Envelope, message io.Reader) error {
	if len(envelope.Recipients) == 0 {
		return errors.ErrNoRecipients
	}

	// Read message into memory for multi-recipient delivery
	data, err := io.ReadAll(message)
	if err != nil {
		return err
	}

	var lastErr error
	delivered := 0

	for _, rcpt := range envelope.Recipients {
		if err := ctx.Err(); err != nil {
			return pkgerrors.Wrapf(err, "delivered to %d of %d recipients", delivered, len(envelope.Recipients))
		}
		parsed := folderstore.ParseRecipient(rcpt)
		inbox, err := s.ensureInbox(parsed.Address)
		if err != nil {
			s.log.WithError(err).WithField("recipient", rcpt).Warn("Failed to open mailbox")
			lastErr = err
			continue
		}

		target := s.deliveryTarget(parsed, inbox)
		id, err := target.Deliver(bytes.NewReader(data))
		if err != nil {
			s.log.WithError(err).WithField("recipient", rcpt).Warn("Delivery failed")
			lastErr = err
			continue
		}

		s.log.WithField("recipient", rcpt).WithField("id", id).Debug("Message delivered")
		delivered++
	}

	if delivered == 0 && lastErr != nil {
		return lastErr
	}
	return nil
}

// List implements folderstore.MessageStore. Messages are sorted by UID.
func (s *MaildirStore) List(ctx context.Context, mailbox, folder string) ([]folderstore.MessageInfo, error) {
	md, err := s.existingFolder(mailbox, folder)
	if pkgerrors.Is(err, errors.ErrMailboxNotFound) {
		// A mailbox that never received mail is empty.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []folderstore.MessageInfo
	for _, sub := range []string{NewDir, CurDir} {
		names, err := md.listDir(sub)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			fi, err := os.Stat(filepath.Join(md.Path(), sub, name))
			if err != nil {
				// Renamed or removed by another process since the listing.
				s.log.WithError(err).WithField("file", name).Debug("Skipping message")
				continue
			}

			var flags []string
			if sub == NewDir {
				flags = append(flags, recentFlag)
			}
			flags = append(flags, ExtractFlags(name).IMAP()...)

			messages = append(messages, folderstore.MessageInfo{
				UID:      ExtractID(name),
				Filename: name,
				Size:     fi.Size(),
				Flags:    flags,
			})
		}
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].UID < messages[j].UID })
	return messages, nil
}

// Retrieve implements folderstore.MessageStore.
func (s *MaildirStore) Retrieve(ctx context.Context, mailbox, folder, uid string) (io.ReadCloser, error) {
	md, err := s.existingFolder(mailbox, folder)
	if err != nil {
		return nil, err
	}
	return md.Open(uid)
}

// SetFlags implements folderstore.MessageStore. Flags without an IMAP
// name, such as passed, are kept as they are on disk.
func (s *MaildirStore) SetFlags(ctx context.Context, mailbox, folder, uid string, flags []string) error {
	return s.updateFlags(mailbox, folder, uid, func(cur Flags) Flags {
		return cur&^IMAPFlags | FlagsFromIMAP(flags)
	})
}

// AddFlags sets the given IMAP flags on a message, keeping the ones it
// already has.
func (s *MaildirStore) AddFlags(ctx context.Context, mailbox, folder, uid string, flags []string) error {
	return s.updateFlags(mailbox, folder, uid, func(cur Flags) Flags {
		return cur | FlagsFromIMAP(flags)
	})
}

// RemoveFlags clears the given IMAP flags on a message.
func (s *MaildirStore) RemoveFlags(ctx context.Context, mailbox, folder, uid string, flags []string) error {
	return s.updateFlags(mailbox, folder, uid, func(cur Flags) Flags {
		return cur &^ FlagsFromIMAP(flags)
	})
}

func (s *MaildirStore) updateFlags(mailbox, folder, uid string, update func(Flags) Flags) error {
	md, err := s.existingFolder(mailbox, folder)
	if err != nil {
		return err
	}
	cur, err := md.Flags(uid)
	if err != nil {
		return err
	}
	_, err = md.SetFlags(uid, update(cur))
	return err
}

// Delete implements folderstore.MessageStore. The message gets the
// trashed flag on disk, so other sessions see the mark too.
func (s *MaildirStore) Delete(ctx context.Context, mailbox, folder, uid string) error {
	return s.updateFlags(mailbox, folder, uid, func(cur Flags) Flags {
		return cur | FlagDeleted
	})
}

// Expunge implements folderstore.MessageStore.
func (s *MaildirStore) Expunge(ctx context.Context, mailbox, folder string) error {
	md, err := s.existingFolder(mailbox, folder)
	if err != nil {
		return err
	}

	var lastErr error
	for _, sub := range []string{NewDir, CurDir} {
		names, err := md.listDir(sub)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !ExtractFlags(name).Has(FlagDeleted) {
				continue
			}
			if err := os.Remove(filepath.Join(md.Path(), sub, name)); err != nil && !os.IsNotExist(err) {
				s.log.WithError(err).WithField("file", name).Warn("Failed to expunge message")
				lastErr = err
			}
		}
	}
	return lastErr
}

// Stat implements folderstore.MessageStore.
func (s *MaildirStore) Stat(ctx context.Context, mailbox, folder string) (count int, totalBytes int64, err error) {
	messages, err := s.List(ctx, mailbox, folder)
	if err != nil {
		return 0, 0, err
	}

	for _, msg := range messages {
		count++
		totalBytes += msg.Size
	}
	return count, totalBytes, nil
}

// Compile-time interface verification.
var _ folderstore.MsgStore = (*MaildirStore)(nil)
