package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcncl/jsonedit/internal/coerce"
	"github.com/mcncl/jsonedit/internal/compare"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/flatten"
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/schema"
	"github.com/mcncl/jsonedit/internal/server"
	"github.com/mcncl/jsonedit/internal/session"
)

// errDocumentsDiffer makes compare exit non-zero after printing the diff.
var errDocumentsDiffer = stderrors.New("documents differ")

const typeHelp = "Type of the value: string, number, boolean, null, object or array."

// GetCmd prints the value at a path
type GetCmd struct {
	DocumentIO
	Path string `arg:"" optional:"" help:"Path of the value, such as 'a.b[2].c'. Empty for the whole document."`
	Raw  bool   `help:"Print strings without quotes." short:"r"`
}

// Run executes the get command
func (c *GetCmd) Run(ctx *Context) error {
	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}

	v, err := session.New(text, session.WithConfig(ctx.Config)).Get(c.Path)
	if err != nil {
		return err
	}
	if c.Raw && v.Kind() == models.String {
		return c.writeOutput(ctx, v.AsString())
	}

	out, err := formatter.NewFormatterWithConfig(ctx.Config).Format(v)
	if err != nil {
		return errors.NewOutputError("failed to format value", err)
	}
	return c.writeOutput(ctx, out)
}

// SetCmd writes a value at a path
type SetCmd struct {
	DocumentIO
	Path  string `arg:"" help:"Path to write, such as 'a.b[2].c'. Missing objects and arrays are created."`
	Value string `arg:"" help:"Text of the value."`
	Type  string `help:"${type_help} Inferred from the text when empty." short:"t"`
}

// Run executes the set command
func (c *SetCmd) Run(ctx *Context) error {
	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}

	value := coerce.Infer(c.Value)
	if c.Type != "" {
		tag, err := coerce.ParseTypeTag(c.Type)
		if err != nil {
			return errors.NewCoercionError("unknown value type", err)
		}
		if value, err = coerce.ByTag(strings.TrimSpace(c.Value), tag); err != nil {
			return errors.NewCoercionError("cannot convert value", err)
		}
	}

	sess := session.New(text, session.WithConfig(ctx.Config))
	if err := sess.Set(c.Path, value); err != nil {
		return err
	}
	return c.writeOutput(ctx, sess.Buffer())
}

// DeleteCmd removes the value at a path
type DeleteCmd struct {
	DocumentIO
	Path string `arg:"" help:"Path to remove, such as 'a.b[2]'."`
	Yes  bool   `help:"Delete without asking." short:"y"`
}

// Run executes the delete command
func (c *DeleteCmd) Run(ctx *Context) error {
	// The answer is read from stdin, so the document cannot come from there too
	if !c.Yes && c.Input == "" {
		return errors.NewInputError("cannot ask for confirmation while reading the document from stdin; use -i or --yes", nil)
	}

	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}

	confirmer := session.AlwaysConfirm
	if !c.Yes {
		confirmer = &session.PromptConfirmer{In: ctx.Stdin, Out: ctx.Stderr}
	}

	sess := session.New(text, session.WithConfig(ctx.Config), session.WithConfirmer(confirmer))
	if err := sess.DeletePath(c.Path); err != nil {
		return err
	}
	return c.writeOutput(ctx, sess.Buffer())
}

// AddPropertyCmd adds a property to an object
type AddPropertyCmd struct {
	DocumentIO
	Name  string `arg:"" help:"Name of the new property."`
	Value string `arg:"" optional:"" help:"Text of the value. Ignored for null, object and array."`
	At    string `help:"Path of the object. Defaults to the root." short:"a"`
	Type  string `help:"${type_help}" short:"t" default:"string"`
}

// Run executes the add-property command
func (c *AddPropertyCmd) Run(ctx *Context) error {
	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}
	tag, err := coerce.ParseTypeTag(c.Type)
	if err != nil {
		return errors.NewCoercionError("unknown value type", err)
	}

	sess := session.New(text, session.WithConfig(ctx.Config))
	if err := sess.AddProperty(c.At, c.Name, c.Value, tag); err != nil {
		return err
	}
	return c.writeOutput(ctx, sess.Buffer())
}

// AddItemCmd appends an item to an array
type AddItemCmd struct {
	DocumentIO
	Value string `arg:"" optional:"" help:"Text of the value. Ignored for null, object and array."`
	At    string `help:"Path of the array. Defaults to the root." short:"a"`
	Type  string `help:"${type_help}" short:"t" default:"string"`
}

// Run executes the add-item command
func (c *AddItemCmd) Run(ctx *Context) error {
	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}
	tag, err := coerce.ParseTypeTag(c.Type)
	if err != nil {
		return errors.NewCoercionError("unknown value type", err)
	}

	sess := session.New(text, session.WithConfig(ctx.Config))
	if err := sess.AddArrayItem(c.At, c.Value, tag); err != nil {
		return err
	}
	return c.writeOutput(ctx, sess.Buffer())
}

// FmtCmd reformats a document
type FmtCmd struct {
	DocumentIO
}

// Run executes the fmt command
func (c *FmtCmd) Run(ctx *Context) error {
	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}

	sess := session.New(text, session.WithConfig(ctx.Config))
	if err := sess.Normalize(); err != nil {
		return err
	}
	return c.writeOutput(ctx, sess.Buffer())
}

// FlattenCmd lists the leaves of a document
type FlattenCmd struct {
	DocumentIO
	Paths bool `help:"Print the path of every leaf instead, in document order."`
}

// Run executes the flatten command
func (c *FlattenCmd) Run(ctx *Context) error {
	text, err := c.readInput(ctx)
	if err != nil {
		return err
	}
	doc, err := parser.Load(text)
	if err != nil {
		return err
	}

	var lines []string
	if c.Paths {
		for _, p := range flatten.Paths(doc) {
			lines = append(lines, p.String())
		}
	} else {
		lines = flatten.Lines(doc)
	}
	return c.writeOutput(ctx, strings.Join(lines, "\n"))
}

// CompareCmd prints a line diff of two documents
type CompareCmd struct {
	Want string `arg:"" help:"Path to the expected document." type:"path"`
	Got  string `arg:"" help:"Path to the actual document." type:"path"`
}

// Run executes the compare command
func (c *CompareCmd) Run(ctx *Context) error {
	want, err := parser.ReadFile(c.Want)
	if err != nil {
		return err
	}
	got, err := parser.ReadFile(c.Got)
	if err != nil {
		return err
	}

	out, err := compare.Texts(want, got, ctx.Config.Document.Indent)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	if _, err := fmt.Fprint(ctx.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return errDocumentsDiffer
}

// SkeletonCmd builds a starter document from a JSON Schema
type SkeletonCmd struct {
	Schema string `arg:"" help:"Path to the JSON Schema file." type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// Run executes the skeleton command
func (c *SkeletonCmd) Run(ctx *Context) error {
	s, err := schema.ParseFile(c.Schema)
	if err != nil {
		return errors.NewInputError("failed to read schema", err)
	}
	doc, err := schema.Skeleton(s, schema.WithConfig(ctx.Config))
	if err != nil {
		return errors.NewParsingError("failed to build document from schema", err)
	}
	text, err := formatter.NewFormatterWithConfig(ctx.Config).Format(doc)
	if err != nil {
		return errors.NewOutputError("failed to format document", err)
	}

	out := DocumentIO{Output: c.Output}
	return out.writeOutput(ctx, text)
}

// ServeCmd starts the browser editor
type ServeCmd struct {
	Host     string `help:"Host to listen on. Defaults to the configured host."`
	Port     int    `help:"Port to listen on. Defaults to the configured port." short:"p"`
	ReadOnly bool   `help:"Show documents without editing controls." name:"read-only"`
}

// Run executes the serve command
func (c *ServeCmd) Run(ctx *Context) error {
	// Port and read-only are already merged into the config
	if c.Host != "" {
		ctx.Config.Server.Host = c.Host
	}
	srv := server.New(server.WithConfig(ctx.Config))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(ctx.Stderr, "jsonedit serving on http://%s\n", srv.Addr())
	if err := srv.Run(runCtx); err != nil {
		return errors.NewOutputError("server stopped", err)
	}
	return nil
}
