package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/log"
	"github.com/mcncl/jsonedit/internal/parser"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to config file. Defaults to the nearest .jsonedit.yml." short:"c" type:"path"`
	Indent  string           `help:"Indentation of documents written by the CLI. Defaults to four spaces; the editor always uses four."`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Get         GetCmd         `cmd:"" help:"Print the value at a path."`
	Set         SetCmd         `cmd:"" help:"Write a value at a path, creating missing containers."`
	Delete      DeleteCmd      `cmd:"" help:"Remove the value at a path."`
	AddProperty AddPropertyCmd `cmd:"" name:"add-property" help:"Add a property to an object."`
	AddItem     AddItemCmd     `cmd:"" name:"add-item" help:"Append an item to an array."`
	Fmt         FmtCmd         `cmd:"" help:"Reformat a document."`
	Flatten     FlattenCmd     `cmd:"" help:"List every leaf value as 'name: value'."`
	Compare     CompareCmd     `cmd:"" help:"Show the differences between two documents."`
	Skeleton    SkeletonCmd    `cmd:"" help:"Build a starter document from a JSON Schema."`
	Serve       ServeCmd       `cmd:"" help:"Start the browser editor."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	kctx := kong.Parse(&CLI, kongOptions()...)

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	err = kctx.Run(ctx)
	_ = log.Sync()
	if err != nil {
		// The diff is the report
		if stderrors.Is(err, errDocumentsDiffer) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("jsonedit"),
		kong.Description("Read and edit JSON documents by path"),
		kong.UsageOnError(),
		kong.Vars{
			"version":   "jsonedit version " + Version,
			"type_help": typeHelp,
		},
	}
}

// newContext loads the configuration with flag precedence and sets up
// logging.
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, CLI.Indent, CLI.Serve.Port, CLI.Serve.ReadOnly, CLI.Debug)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, errors.NewConfigError("failed to initialize logging", err)
	}

	return &Context{
		Debug:  CLI.Debug,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// DocumentIO selects where a command reads and writes its document
type DocumentIO struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// readInput returns the document text from the input file or stdin
func (d *DocumentIO) readInput(ctx *Context) (string, error) {
	if d.Input != "" {
		return parser.ReadFile(d.Input)
	}

	if f, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return "", errors.NewInputError("failed to access stdin", err)
		}
		// Terminal is interactive (not piped)
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			return "", errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// writeOutput writes text and a trailing newline to the output file or stdout
func (d *DocumentIO) writeOutput(ctx *Context, text string) error {
	if d.Output != "" {
		err := os.WriteFile(d.Output, []byte(text+"\n"), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", d.Output), err)
		}
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
