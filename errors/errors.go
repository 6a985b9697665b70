// Package errors provides centralized error definitions for folderstore.
package errors

import "errors"

// Mailbox errors.
var (
	// ErrMailboxNotFound indicates the requested mailbox does not exist.
	ErrMailboxNotFound = errors.New("mailbox not found")

	// ErrPathTraversal indicates a mailbox name resolved outside the base path.
	ErrPathTraversal = errors.New("path escapes base directory")
)

// Folder errors.
var (
	// ErrFolderNotFound indicates the requested folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrFolderExists indicates a folder with the same path already exists.
	ErrFolderExists = errors.New("folder already exists")

	// ErrFolderNotEmpty indicates a folder still has sub-folders.
	ErrFolderNotEmpty = errors.New("folder has sub-folders")

	// ErrInvalidFolderPath indicates a folder path with an empty or
	// otherwise unusable component.
	ErrInvalidFolderPath = errors.New("invalid folder path")

	// ErrInvalidPathMode indicates an unknown folder path mode.
	ErrInvalidPathMode = errors.New("invalid folder path mode")
)

// Message errors.
var (
	// ErrMessageNotFound indicates the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrInvalidMessageID indicates an id that cannot be encoded in a filename.
	ErrInvalidMessageID = errors.New("invalid message id")
)

// Delivery errors.
var (
	// ErrNoRecipients indicates no valid recipients were provided.
	ErrNoRecipients = errors.New("no recipients")
)

// Store errors.
var (
	// ErrStoreNotRegistered indicates the requested store type is not registered.
	ErrStoreNotRegistered = errors.New("store type not registered")

	// ErrStoreConfigInvalid indicates the store configuration is invalid.
	ErrStoreConfigInvalid = errors.New("invalid store configuration")
)

// Maildir errors.
var (
	// ErrMaildirNotFound indicates the maildir directory does not exist.
	ErrMaildirNotFound = errors.New("maildir not found")
)
