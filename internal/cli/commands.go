package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/infodancer/folderstore"
	"github.com/infodancer/folderstore/errors"
	"github.com/infodancer/folderstore/maildir"
)

// newFlagSet returns a flag set that prints the command's usage on error.
func newFlagSet(name string, ctx commandContext) *flag.FlagSet {
	fs := flag.NewFlagSet(ctx.AppName+" "+name, flag.ContinueOnError)
	fs.SetOutput(ctx.Err)
	fs.Usage = func() {
		fmt.Fprintln(ctx.Err, ctx.Usage)
		fmt.Fprintln(ctx.Err)
		fs.PrintDefaults()
	}
	return fs
}

func runPath(args []string, ctx commandContext) int {
	fs := newFlagSet("path", ctx)
	root := fs.String("root", ".", "mailbox root directory")
	layoutName := fs.String("layout", "maildirpp", "folder layout (maildirpp or nested)")
	modeName := fs.String("mode", "root", "path mode (root, new, cur, tmp or container)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(ctx.Err, "Error: expected one folder argument\n")
		return 2
	}

	layout, err := maildir.ParseLayout(*layoutName)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 2
	}
	mode, err := maildir.ParsePathMode(*modeName)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 2
	}

	path, err := maildir.NewPathMapper(*root, layout).FolderFSPath(maildir.ParseFolderPath(fs.Arg(0)), mode)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(ctx.Out, path)
	return 0
}

func runEncode(args []string, ctx commandContext) int {
	fs := newFlagSet("encode", ctx)
	letters := fs.String("flags", "", "flag letters (D, F, P, R, S, T) in any order")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(ctx.Err, "Error: expected one id argument\n")
		return 2
	}
	id := fs.Arg(0)
	if !maildir.ValidID(id) {
		fmt.Fprintf(ctx.Err, "Error: %v: %q\n", errors.ErrInvalidMessageID, id)
		return 1
	}
	fmt.Fprintln(ctx.Out, maildir.BuildFilename(id, maildir.ParseFlags(*letters)))
	return 0
}

func runDecode(args []string, ctx commandContext) int {
	fs := newFlagSet("decode", ctx)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(ctx.Err, "Error: missing argument: filename required\n")
		return 2
	}
	for _, name := range fs.Args() {
		fmt.Fprintf(ctx.Out, "%s\t%s\n", maildir.ExtractID(name), maildir.ExtractFlags(name))
	}
	return 0
}

func runGenID(args []string, ctx commandContext) int {
	fs := newFlagSet("genid", ctx)
	n := fs.IntP("count", "n", 1, "number of ids to generate")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	for i := 0; i < *n; i++ {
		fmt.Fprintln(ctx.Out, maildir.GenerateID())
	}
	return 0
}

// openStore opens the store described by the --config file.
func openStore(configPath string, ctx commandContext) (folderstore.MsgStore, bool) {
	if configPath == "" {
		fmt.Fprintf(ctx.Err, "Error: --config is required\n")
		return nil, false
	}
	store, err := folderstore.OpenFile(configPath)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return nil, false
	}
	return store, true
}

func runFolders(args []string, ctx commandContext) int {
	fs := newFlagSet("folders", ctx)
	configPath := fs.String("config", "", "store config file (TOML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintf(ctx.Err, "Error: expected <mailbox> [parent]\n")
		return 2
	}
	store, ok := openStore(*configPath, ctx)
	if !ok {
		return 1
	}

	names, err := store.ListFolders(context.Background(), fs.Arg(0), fs.Arg(1))
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}
	for _, name := range names {
		fmt.Fprintln(ctx.Out, name)
	}
	return 0
}

func runStat(args []string, ctx commandContext) int {
	fs := newFlagSet("stat", ctx)
	configPath := fs.String("config", "", "store config file (TOML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(ctx.Err, "Error: expected one mailbox argument\n")
		return 2
	}
	store, ok := openStore(*configPath, ctx)
	if !ok {
		return 1
	}
	md, ok := store.(*maildir.MaildirStore)
	if !ok {
		fmt.Fprintf(ctx.Err, "Error: stat needs a maildir store\n")
		return 1
	}

	stats, err := md.StatAll(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}
	for _, st := range stats {
		name := st.Folder
		if name == "" {
			name = "INBOX"
		}
		fmt.Fprintf(ctx.Out, "%s\t%d\t%d\n", name, st.Count, st.TotalBytes)
	}
	return 0
}
