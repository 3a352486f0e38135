package collections

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	"github.com/jamesgeorge007/postwoman/internal/workspace"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// Command prints the collection tree of a workspace.
type Command struct {
	*base.Command

	flagConfig string
	flagWS     base.WorkspaceFlags
	flagIDs    bool
}

func (c *Command) Synopsis() string {
	return "Show the collection tree of a workspace"
}

func (c *Command) Help() string {
	return `Usage: postwoman collections [options]

  Print every collection and request of a workspace as a tree.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("collections", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.WorkspaceVars(&c.flagWS)
	f.BoolVar(&c.flagIDs, "ids", false, "Print collection and request IDs.")
	return f
}

func (c *Command) Run(args []string) int {
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

	out, err := RenderTree(ctx, rt, ws, c.flagIDs)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading collections: %v", err))
		return 1
	}
	if out == "" {
		c.UI.Output("No collections.")
		return 0
	}
	c.UI.Output(out)
	return 0
}

// RenderTree walks the collection views of ws and renders them as a list.
func RenderTree(ctx context.Context, rt *workspace.Runtime, ws pw.WorkspaceHandle, ids bool) (string, error) {
	roots, err := rt.Service.RootCollectionView(ctx, ws)
	if err != nil {
		return "", err
	}

	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)

	var walk func(item pw.CollectionViewItem) error
	walk = func(item pw.CollectionViewItem) error {
		l.AppendItem(label(text.Bold.Sprint(item.Name), item.CollectionID, ids))

		ch, err := rt.Service.CollectionHandle(ctx, ws, item.CollectionID)
		if err != nil {
			return err
		}
		children, err := rt.Service.CollectionChildrenView(ctx, ch)
		if err != nil {
			return err
		}
		st := children.Get()
		if !st.OK() {
			return fmt.Errorf("collection %s: %s", item.CollectionID, st.Reason)
		}

		l.Indent()
		defer l.UnIndent()
		for _, child := range st.Value.Items {
			switch child.Type {
			case pw.ChildTypeCollection:
				if err := walk(*child.Collection); err != nil {
					return err
				}
			case pw.ChildTypeRequest:
				r := child.Request.Request
				l.AppendItem(label(fmt.Sprintf("%s %s", methodColor(r.Method).Sprint(r.Method), r.Name),
					child.Request.RequestID, ids))
			}
		}
		return nil
	}

	for _, item := range roots.Get().Value.Collections {
		if err := walk(item); err != nil {
			return "", err
		}
	}
	if l.Length() == 0 {
		return "", nil
	}
	return l.Render(), nil
}

func label(name, id string, ids bool) string {
	if !ids {
		return name
	}
	return fmt.Sprintf("%s %s", name, text.FgHiBlack.Sprint("("+id+")"))
}

func methodColor(method string) text.Colors {
	switch strings.ToUpper(method) {
	case "GET":
		return text.Colors{text.FgGreen}
	case "POST":
		return text.Colors{text.FgYellow}
	case "PUT", "PATCH":
		return text.Colors{text.FgBlue}
	case "DELETE":
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

// SearchCommand filters the collection tree by a query.
type SearchCommand struct {
	*base.Command

	flagConfig string
	flagWS     base.WorkspaceFlags
}

func (c *SearchCommand) Synopsis() string {
	return "Search collections and requests by name"
}

func (c *SearchCommand) Help() string {
	return `Usage: postwoman search [options] <query>

  Print the collections and requests whose name matches query. Matching
  is case-insensitive; ancestors of a match are kept.` + c.Flags().Help()
}

func (c *SearchCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("search", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.WorkspaceVars(&c.flagWS)
	return f
}

func (c *SearchCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	query := strings.Join(f.Args(), " ")

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

	h, err := rt.Service.SearchResultsView(ctx, ws, query)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error searching: %v", err))
		return 1
	}
	defer h.End()

	results := h.Get().Value.Results
	if len(results) == 0 {
		c.UI.Output("No matches.")
		return 0
	}

	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	var walk func(coll *pw.RESTCollection)
	walk = func(coll *pw.RESTCollection) {
		l.AppendItem(highlight(coll.Name, query))
		l.Indent()
		for _, f := range coll.Folders {
			walk(f)
		}
		for _, r := range coll.Requests {
			l.AppendItem(fmt.Sprintf("%s %s", methodColor(r.Method).Sprint(r.Method), highlight(r.Name, query)))
		}
		l.UnIndent()
	}
	for _, coll := range results {
		walk(coll)
	}
	c.UI.Output(l.Render())
	return 0
}

func highlight(name, query string) string {
	i := strings.Index(strings.ToLower(name), strings.ToLower(query))
	if query == "" || i < 0 {
		return name
	}
	j := i + len(query)
	if j > len(name) {
		return name
	}
	return name[:i] + text.FgHiYellow.Sprint(name[i:j]) + name[j:]
}
