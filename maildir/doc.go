// Package maildir provides the Maildir naming convention and a message
// store built on it.
//
// Each message is kept as a separate file whose name carries both the
// message's unique id and its flags:
//
//	1705678901.M123456P12345Q1.3f2a9c0d11e4b7a6:2,RS
//	└──────────────── id ─────────────────────┘└┬┘└┬┘
//	                                  info separator flags
//
// Flag letters are always written in the order DFPRST. A freshly delivered
// message in new/ has no info part at all; once it moves to cur/ it always
// has one, even with no flags ("id:2,").
//
// Folders map to directories below the mailbox root. With the default
// Maildir++ layout every folder is a dotted sibling of the root's own
// storage directories:
//
//	basePath/
//	└── user@example.com/
//	    ├── new/                # INBOX
//	    ├── cur/
//	    ├── tmp/
//	    └── .Work.Projects/     # folder Work/Projects
//	        ├── new/
//	        ├── cur/
//	        └── tmp/
//
// The nested layout instead keeps sub-folders inside a ".name.directory"
// container next to their parent (.Work.directory/Projects/).
//
// The package registers itself with the folderstore registry under the name
// "maildir". Import it with a blank identifier to enable maildir support:
//
//	import _ "github.com/infodancer/folderstore/maildir"
//
// Then open a maildir store:
//
//	store, err := folderstore.Open(folderstore.StoreConfig{
//	    Type:     "maildir",
//	    BasePath: "/var/mail",
//	    Options:  map[string]string{"layout": "maildirpp"},
//	})
package maildir
