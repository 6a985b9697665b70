package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

type Config struct {
	AppName string
	Out     io.Writer
	Err     io.Writer

	Version string

	Debug bool
}

// commandContext is handed to every command.
type commandContext struct {
	AppName string
	Usage   string
	Out     io.Writer
	Err     io.Writer
}

type command struct {
	run   func(args []string, ctx commandContext) int
	usage string
}

var commands = map[string]command{
	"path":    {runPath, "path [--root <dir>] [--layout maildirpp|nested] [--mode root|new|cur|tmp|container] <folder>"},
	"encode":  {runEncode, "encode [--flags <letters>] <id>"},
	"decode":  {runDecode, "decode <filename>..."},
	"genid":   {runGenID, "genid [-n <count>]"},
	"folders": {runFolders, "folders --config <file> <mailbox> [parent]"},
	"stat":    {runStat, "stat --config <file> <mailbox>"},
}

var commandOrder = []string{"path", "encode", "decode", "genid", "folders", "stat"}

func Run(argv []string, cfg Config) int {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.AppName == "" {
		cfg.AppName = "mdname"
	}
	if cfg.Version == "" {
		cfg.Version = "0.0.0-dev"
	}

	global := flag.NewFlagSet(cfg.AppName, flag.ContinueOnError)
	global.SetOutput(cfg.Err)
	global.SetInterspersed(false)

	var (
		flgHelp    bool
		flgVersion bool
	)
	global.BoolVarP(&flgHelp, "help", "h", false, "show help")
	global.BoolVar(&flgVersion, "version", false, "print version and exit")
	global.BoolVar(&cfg.Debug, "debug", false, "debug output")

	global.Usage = func() { fmt.Fprintln(cfg.Err, usage(cfg.AppName)) }

	if err := global.Parse(argv); err != nil {
		fmt.Fprintln(cfg.Err)
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 2
	}

	if flgVersion {
		fmt.Fprintf(cfg.Out, "%s %s\n", cfg.AppName, cfg.Version)
		return 0
	}

	logrus.SetOutput(cfg.Err)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	rest := global.Args()
	if flgHelp || len(rest) == 0 {
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 0
	}

	name, args := rest[0], rest[1:]
	if name == "help" {
		if len(args) > 0 {
			if cmd, ok := commands[args[0]]; ok {
				fmt.Fprintf(cfg.Err, "Usage:\n  %s %s\n", cfg.AppName, cmd.usage)
				return 0
			}
		}
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(cfg.Err, "Error: unknown command %q\n\n", name)
		fmt.Fprintln(cfg.Err, usage(cfg.AppName))
		return 2
	}
	return cmd.run(args, commandContext{
		AppName: cfg.AppName,
		Usage:   fmt.Sprintf("Usage:\n  %s %s", cfg.AppName, cmd.usage),
		Out:     cfg.Out,
		Err:     cfg.Err,
	})
}

func usage(app string) string {
	s := fmt.Sprintf("Usage:\n  %s [--debug] <command> [args]\n\nCommands:\n", app)
	for _, name := range commandOrder {
		s += fmt.Sprintf("  %s %s\n", app, commands[name].usage)
	}
	return s
}
