package folderstore

import (
	"context"
	"io"
)

// MessageStore provides access to stored messages.
// Used by pop3d and imapd for message retrieval and flag updates.
//
// Folders are "/"-separated paths such as "Work/Projects". The empty
// string is the mailbox's root folder (INBOX).
type MessageStore interface {
	// List returns message metadata for a folder.
	List(ctx context.Context, mailbox, folder string) ([]MessageInfo, error)

	// Retrieve returns the full message content.
	// The caller is responsible for closing the returned ReadCloser.
	Retrieve(ctx context.Context, mailbox, folder, uid string) (io.ReadCloser, error)

	// SetFlags replaces the IMAP flags of a message. Names with no on-disk
	// representation are ignored, and on-disk flags with no IMAP name are
	// kept.
	SetFlags(ctx context.Context, mailbox, folder, uid string, flags []string) error

	// AddFlags and RemoveFlags set or clear the given flags, leaving the
	// message's other flags alone.
	AddFlags(ctx context.Context, mailbox, folder, uid string, flags []string) error
	RemoveFlags(ctx context.Context, mailbox, folder, uid string, flags []string) error

	// Delete marks a message for deletion.
	// The message is not permanently removed until Expunge is called.
	Delete(ctx context.Context, mailbox, folder, uid string) error

	// Expunge permanently removes all messages marked for deletion.
	Expunge(ctx context.Context, mailbox, folder string) error

	// Stat returns folder statistics.
	// count is the number of messages, totalBytes is the sum of all message sizes.
	Stat(ctx context.Context, mailbox, folder string) (count int, totalBytes int64, err error)
}

// FolderManager creates, lists and removes folders within a mailbox.
type FolderManager interface {
	// CreateFolder creates a folder. Its parent folders must exist.
	CreateFolder(ctx context.Context, mailbox, folder string) error

	// ListFolders returns the names of the direct sub-folders of parent,
	// sorted.
	ListFolders(ctx context.Context, mailbox, parent string) ([]string, error)

	// DeleteFolder removes a folder and its messages. A folder that still
	// has sub-folders cannot be deleted.
	DeleteFolder(ctx context.Context, mailbox, folder string) error
}

// MessageInfo contains metadata about a stored message.
type MessageInfo struct {
	// UID is the unique identifier for the message within the folder.
	// It is the id part of the message filename and does not change when
	// the message's flags do.
	UID string

	// Filename is the message's current filename.
	Filename string

	// Size is the message size in bytes.
	Size int64

	// Flags contains message flags (e.g., "\Seen", "\Deleted", "\Answered").
	// Messages not yet moved out of new/ carry "\Recent".
	Flags []string
}
