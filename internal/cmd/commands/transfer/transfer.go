package transfer

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// ImportCommand imports collections from a file.
type ImportCommand struct {
	*base.Command

	flagConfig string
	flagWS     base.WorkspaceFlags
	flagFormat string

	// Stdin is read when the file argument is "-".
	Stdin io.Reader
}

func (c *ImportCommand) Synopsis() string {
	return "Import collections from a JSON or YAML file"
}

func (c *ImportCommand) Help() string {
	return `Usage: postwoman import [options] <file>

  Import collections into a workspace. The file holds one collection or a
  list of collections; use "-" to read standard input. Imported
  collections and requests get fresh IDs.` + c.Flags().Help()
}

func (c *ImportCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("import", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.WorkspaceVars(&c.flagWS)
	f.StringVar(&c.flagFormat, "format", "",
		`Input format, "json" or "yaml". Defaults to the file extension.`)
	return f
}

func (c *ImportCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("exactly one file argument is required")
		return 1
	}
	path := f.Arg(0)

	format := c.flagFormat
	if format == "" {
		format = FormatFor(path)
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		in := c.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading %s: %v", path, err))
		return 1
	}

	collections, err := Decode(data, format)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error decoding %s: %v", path, err))
		return 1
	}

	ctx := context.Background()
	rt, _, err := c.Runtime(ctx, c.flagConfig)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer rt.Close()

	ws, err := c.flagWS.Resolve(ctx, rt)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	handles, err := rt.Service.ImportRESTCollections(ctx, ws, collections)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error importing collections: %v", err))
		return 1
	}
	c.UI.Info(fmt.Sprintf("Imported %d collection(s) into %s", len(handles), ws.Get().Value.Name))
	return 0
}

// ExportCommand writes collections to a file.
type ExportCommand struct {
	*base.Command

	flagConfig     string
	flagWS         base.WorkspaceFlags
	flagCollection string
	flagOut        string
	flagFormat     string

	// Stdout is written when -out is "-".
	Stdout io.Writer
}

func (c *ExportCommand) Synopsis() string {
	return "Export collections to a JSON or YAML file"
}

func (c *ExportCommand) Help() string {
	return `Usage: postwoman export [options]

  Export every collection of a workspace, or a single one with
  -collection. IDs are not exported.` + c.Flags().Help()
}

func (c *ExportCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("export", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.WorkspaceVars(&c.flagWS)
	f.StringVar(&c.flagCollection, "collection", "", "Export only this collection ID.")
	f.StringVar(&c.flagOut, "out", "",
		`Output file, or "-" for standard output. Defaults to a name derived from the workspace.`)
	f.StringVar(&c.flagFormat, "format", "",
		`Output format, "json" or "yaml". Defaults to the file extension.`)
	return f
}

func (c *ExportCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	ctx := context.Background()
	rt, _, err := c.Runtime(ctx, c.flagConfig)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer rt.Close()

	ws, err := c.flagWS.Resolve(ctx, rt)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	var collections []*pw.RESTCollection
	if c.flagCollection != "" {
		ch, err := rt.Service.CollectionHandle(ctx, ws, c.flagCollection)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error resolving collection: %v", err))
			return 1
		}
		coll, err := rt.Service.ExportRESTCollection(ctx, ch)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error exporting collection: %v", err))
			return 1
		}
		collections = []*pw.RESTCollection{coll}
	} else {
		collections, err = rt.Service.ExportRESTCollections(ctx, ws)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error exporting collections: %v", err))
			return 1
		}
	}

	out, format := c.flagOut, c.flagFormat
	if format == "" {
		if out == "" || out == "-" {
			format = FormatJSON
		} else {
			format = FormatFor(out)
		}
	}
	if out == "" {
		out = DefaultFileName(ws.Get().Value.Name, format)
	}

	data, err := Encode(collections, format)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding collections: %v", err))
		return 1
	}

	if out == "-" {
		w := c.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			c.UI.Error(fmt.Sprintf("error writing output: %v", err))
			return 1
		}
		return 0
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		c.UI.Error(fmt.Sprintf("error writing %s: %v", out, err))
		return 1
	}
	c.UI.Info(fmt.Sprintf("Exported %d collection(s) to %s", len(collections), out))
	return 0
}
