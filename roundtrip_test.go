package folderstore_test

// Cross-session tests through the public API. Every step opens its own store
// from the same TOML config file, the way a delivery agent and a mail reader
// run as separate processes over one maildir tree.
//
// The config mirrors a typical deployment:
//
//	type = "maildir"
//	base_path = "<tmp>/mail"
//	[options]
//	layout = "maildirpp" | "nested"
//	maildir_subdir = "Maildir"
//	path_template = "{localpart}"
//
// so alice@test.local lives at <tmp>/mail/alice/Maildir.

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/infodancer/folderstore"
	"github.com/infodancer/folderstore/errors"
	_ "github.com/infodancer/folderstore/maildir" // register maildir backend
)

var layouts = []string{"maildirpp", "nested"}

// writeConfig writes a store config for layout and returns its path and the
// store's base directory.
func writeConfig(t *testing.T, layout string) (cfgPath, base string) {
	t.Helper()
	dir := t.TempDir()
	base = filepath.Join(dir, "mail")
	cfgPath = filepath.Join(dir, "store.toml")
	cfg := strings.Join([]string{
		`type = "maildir"`,
		`base_path = "` + filepath.ToSlash(base) + `"`,
		``,
		`[options]`,
		`layout = "` + layout + `"`,
		`maildir_subdir = "Maildir"`,
		`path_template = "{localpart}"`,
	}, "\n")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	return cfgPath, base
}

// session opens a fresh store from the config file.
func session(t *testing.T, cfgPath string) folderstore.MsgStore {
	t.Helper()
	store, err := folderstore.OpenFile(cfgPath)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	return store
}

func deliver(t *testing.T, cfgPath, body string, recipients ...string) {
	t.Helper()
	envelope := folderstore.Envelope{From: "sender@example.com", Recipients: recipients}
	msg := strings.NewReader("Subject: Test\r\n\r\n" + body)
	if err := session(t, cfgPath).Deliver(context.Background(), envelope, msg); err != nil {
		t.Fatalf("Deliver to %v: %v", recipients, err)
	}
}

func list(t *testing.T, cfgPath, mailbox, folder string) []folderstore.MessageInfo {
	t.Helper()
	msgs, err := session(t, cfgPath).List(context.Background(), mailbox, folder)
	if err != nil {
		t.Fatalf("List %s %q: %v", mailbox, folder, err)
	}
	return msgs
}

func retrieve(t *testing.T, cfgPath, mailbox, folder, uid string) string {
	t.Helper()
	rc, err := session(t, cfgPath).Retrieve(context.Background(), mailbox, folder, uid)
	if err != nil {
		t.Fatalf("Retrieve %s %q %s: %v", mailbox, folder, uid, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return string(data)
}

// filesIn returns the sorted file names in dir.
func filesIn(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func containsFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

// TestRoundTrip_ExtensionDelivery delivers subaddressed mail in one session
// and finds it, on disk and through List, in later ones.
func TestRoundTrip_ExtensionDelivery(t *testing.T) {
	folderDirs := map[string]string{
		"maildirpp": ".Work.Projects",
		"nested":    filepath.Join(".Work.directory", "Projects"),
	}
	for _, layout := range layouts {
		t.Run(layout, func(t *testing.T) {
			cfgPath, base := writeConfig(t, layout)
			ctx := context.Background()
			store := session(t, cfgPath)
			for _, f := range []string{"Work", "Work/Projects"} {
				if err := store.CreateFolder(ctx, "alice", f); err != nil {
					t.Fatalf("CreateFolder %s: %v", f, err)
				}
			}

			deliver(t, cfgPath, "project mail", "alice+Work.Projects@test.local")
			deliver(t, cfgPath, "unknown folder", "alice+Nope@test.local")

			msgs := list(t, cfgPath, "alice", "Work/Projects")
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message in Work/Projects, got %d", len(msgs))
			}
			if !containsFlag(msgs[0].Flags, "\\Recent") {
				t.Errorf("new message flags = %v, want \\Recent", msgs[0].Flags)
			}
			if got := retrieve(t, cfgPath, "alice", "Work/Projects", msgs[0].UID); !strings.Contains(got, "project mail") {
				t.Errorf("content = %q", got)
			}

			newDir := filepath.Join(base, "alice", "Maildir", folderDirs[layout], "new")
			if diff := cmp.Diff([]string{msgs[0].UID}, filesIn(t, newDir)); diff != "" {
				t.Errorf("files in %s mismatch (-want +got):\n%s", newDir, diff)
			}

			inbox := list(t, cfgPath, "alice", "")
			if len(inbox) != 1 || !strings.Contains(retrieve(t, cfgPath, "alice", "", inbox[0].UID), "unknown folder") {
				t.Errorf("expected the unknown-folder message in INBOX, got %+v", inbox)
			}
		})
	}
}

// TestRoundTrip_FlagFilenames checks that flag changes are written into the
// filename, so every later session reads the same state.
func TestRoundTrip_FlagFilenames(t *testing.T) {
	cfgPath, base := writeConfig(t, "maildirpp")
	ctx := context.Background()
	curDir := filepath.Join(base, "alice", "Maildir", "cur")

	deliver(t, cfgPath, "flag me", "alice@test.local")
	uid := list(t, cfgPath, "alice", "")[0].UID

	if err := session(t, cfgPath).SetFlags(ctx, "alice", "", uid, []string{"\\Seen", "\\Flagged"}); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}
	if diff := cmp.Diff([]string{uid + ":2,FS"}, filesIn(t, curDir)); diff != "" {
		t.Errorf("cur/ after SetFlags mismatch (-want +got):\n%s", diff)
	}

	msgs := list(t, cfgPath, "alice", "")
	if diff := cmp.Diff([]string{"\\Seen", "\\Flagged"}, msgs[0].Flags); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}

	if err := session(t, cfgPath).Delete(ctx, "alice", "", uid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if diff := cmp.Diff([]string{uid + ":2,FST"}, filesIn(t, curDir)); diff != "" {
		t.Errorf("cur/ after Delete mismatch (-want +got):\n%s", diff)
	}
	if msgs := list(t, cfgPath, "alice", ""); len(msgs) != 1 || !containsFlag(msgs[0].Flags, "\\Deleted") {
		t.Errorf("expected the message marked \\Deleted before Expunge, got %+v", msgs)
	}

	if err := session(t, cfgPath).Expunge(ctx, "alice", ""); err != nil {
		t.Fatalf("Expunge: %v", err)
	}
	if names := filesIn(t, curDir); len(names) != 0 {
		t.Errorf("expected empty cur/ after Expunge, got %v", names)
	}
	_, err := session(t, cfgPath).Retrieve(ctx, "alice", "", uid)
	if !stderrors.Is(err, errors.ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound after Expunge, got %v", err)
	}
}

// TestRoundTrip_ForeignFlags checks that a file written by another maildir
// tool keeps its flags through IMAP flag updates.
func TestRoundTrip_ForeignFlags(t *testing.T) {
	cfgPath, base := writeConfig(t, "maildirpp")
	ctx := context.Background()
	deliver(t, cfgPath, "seed", "alice@test.local")

	curDir := filepath.Join(base, "alice", "Maildir", "cur")
	const uid = "1071577232.28549.m03s"
	if err := os.WriteFile(filepath.Join(curDir, uid+":2,PS"), []byte("Subject: fwd\r\n\r\nx"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := session(t, cfgPath).AddFlags(ctx, "alice", "", uid, []string{"\\Answered"}); err != nil {
		t.Fatalf("AddFlags: %v", err)
	}
	if err := session(t, cfgPath).RemoveFlags(ctx, "alice", "", uid, []string{"\\Seen"}); err != nil {
		t.Fatalf("RemoveFlags: %v", err)
	}
	if diff := cmp.Diff([]string{uid + ":2,PR"}, filesIn(t, curDir)); diff != "" {
		t.Errorf("cur/ mismatch (-want +got):\n%s", diff)
	}
}

// TestRoundTrip_FolderLifecycle creates, lists and removes a folder tree
// across sessions in both layouts.
func TestRoundTrip_FolderLifecycle(t *testing.T) {
	for _, layout := range layouts {
		t.Run(layout, func(t *testing.T) {
			cfgPath, _ := writeConfig(t, layout)
			ctx := context.Background()

			store := session(t, cfgPath)
			for _, f := range []string{"Lists", "Lists/golang", "Lists/rust", "Archive"} {
				if err := store.CreateFolder(ctx, "bob", f); err != nil {
					t.Fatalf("CreateFolder %s: %v", f, err)
				}
			}
			deliver(t, cfgPath, "go list mail", "bob+Lists.golang@test.local")

			reader := session(t, cfgPath)
			for parent, want := range map[string][]string{
				"":      {"Archive", "Lists"},
				"Lists": {"golang", "rust"},
			} {
				got, err := reader.ListFolders(ctx, "bob", parent)
				if err != nil {
					t.Fatalf("ListFolders %q: %v", parent, err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("ListFolders %q mismatch (-want +got):\n%s", parent, diff)
				}
			}

			if err := reader.DeleteFolder(ctx, "bob", "Lists"); !stderrors.Is(err, errors.ErrFolderNotEmpty) {
				t.Fatalf("expected ErrFolderNotEmpty, got %v", err)
			}
			for _, f := range []string{"Lists/golang", "Lists/rust", "Lists"} {
				if err := session(t, cfgPath).DeleteFolder(ctx, "bob", f); err != nil {
					t.Fatalf("DeleteFolder %s: %v", f, err)
				}
			}

			got, err := session(t, cfgPath).ListFolders(ctx, "bob", "")
			if err != nil {
				t.Fatalf("ListFolders: %v", err)
			}
			if diff := cmp.Diff([]string{"Archive"}, got); diff != "" {
				t.Errorf("ListFolders after delete mismatch (-want +got):\n%s", diff)
			}
			_, err = session(t, cfgPath).List(ctx, "bob", "Lists/golang")
			if !stderrors.Is(err, errors.ErrFolderNotFound) {
				t.Errorf("expected ErrFolderNotFound for deleted folder, got %v", err)
			}
		})
	}
}

// TestRoundTrip_MultipleRecipients delivers one message to several
// recipients, each into their own folder choice.
func TestRoundTrip_MultipleRecipients(t *testing.T) {
	cfgPath, _ := writeConfig(t, "nested")
	if err := session(t, cfgPath).CreateFolder(context.Background(), "carol", "Work"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	deliver(t, cfgPath, "to everyone", "carol+Work@test.local", "dave@test.local", "erin+Work@test.local")

	tests := []struct {
		mailbox, folder string
	}{
		{"carol", "Work"},
		{"dave", ""},
		{"erin", ""},
	}
	for _, tt := range tests {
		if msgs := list(t, cfgPath, tt.mailbox, tt.folder); len(msgs) != 1 {
			t.Errorf("%s %q: expected 1 message, got %d", tt.mailbox, tt.folder, len(msgs))
		}
	}
	if msgs := list(t, cfgPath, "carol", ""); len(msgs) != 0 {
		t.Errorf("carol INBOX: expected no messages, got %d", len(msgs))
	}
}

// TestRoundTrip_Stat sums sizes over new/ and cur/.
func TestRoundTrip_Stat(t *testing.T) {
	cfgPath, _ := writeConfig(t, "maildirpp")
	ctx := context.Background()

	deliver(t, cfgPath, "one", "frank@test.local")
	deliver(t, cfgPath, "two", "frank@test.local")
	msgs := list(t, cfgPath, "frank", "")
	if err := session(t, cfgPath).SetFlags(ctx, "frank", "", msgs[0].UID, []string{"\\Seen"}); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}

	count, size, err := session(t, cfgPath).Stat(ctx, "frank", "")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	want := int64(2 * len("Subject: Test\r\n\r\none"))
	if count != 2 || size != want {
		t.Errorf("Stat = %d, %d; want 2, %d", count, size, want)
	}
}

// TestRoundTrip_EmptyMailbox lists a mailbox that never received mail.
func TestRoundTrip_EmptyMailbox(t *testing.T) {
	cfgPath, _ := writeConfig(t, "maildirpp")
	if msgs := list(t, cfgPath, "newuser", ""); len(msgs) != 0 {
		t.Errorf("expected 0 messages for new mailbox, got %d", len(msgs))
	}
}

// TestRoundTrip_TraversalRejected covers escapes through the mailbox name
// and through the folder name.
func TestRoundTrip_TraversalRejected(t *testing.T) {
	cfgPath, _ := writeConfig(t, "maildirpp")
	ctx := context.Background()
	store := session(t, cfgPath)

	for _, addr := range []string{"../etc/passwd", "user/../../../etc"} {
		envelope := folderstore.Envelope{From: "sender@example.com", Recipients: []string{addr}}
		if err := store.Deliver(ctx, envelope, strings.NewReader("x")); err == nil {
			t.Errorf("expected error delivering to %q", addr)
		}
	}

	deliver(t, cfgPath, "body", "gina@test.local")
	for _, folder := range []string{"../hank", "Work/../../hank"} {
		_, err := store.List(ctx, "gina", folder)
		if !stderrors.Is(err, errors.ErrInvalidFolderPath) {
			t.Errorf("List %q: expected ErrInvalidFolderPath, got %v", folder, err)
		}
	}
}
