package maildir

import (
	"github.com/infodancer/folderstore"
	"github.com/infodancer/folderstore/errors"
)

func init() {
	folderstore.Register("maildir", func(config folderstore.StoreConfig) (folderstore.MsgStore, error) {
		if config.BasePath == "" {
			return nil, errors.ErrStoreConfigInvalid
		}
		// layout selects the folder hierarchy on disk: "maildirpp" (default) or "nested"
		layout, err := ParseLayout(config.Option("layout"))
		if err != nil {
			return nil, err
		}
		return NewStore(config.BasePath, Options{
			// maildir_subdir specifies the subdirectory under each user (e.g., "Maildir")
			MaildirSubdir: config.Option("maildir_subdir"),
			// path_template transforms mailbox names using {domain}, {localpart}, {email}
			// e.g., "{domain}/users/{localpart}" transforms user@example.com to example.com/users/user
			PathTemplate: config.Option("path_template"),
			Layout:       layout,
		}), nil
	})
}
