package folderstore

// MsgStore combines delivery, storage and folder operations.
// It embeds DeliveryAgent (for smtpd message delivery),
// MessageStore (for pop3d/imapd message access) and
// FolderManager (for imapd folder management).
type MsgStore interface {
	DeliveryAgent
	MessageStore
	FolderManager
}
