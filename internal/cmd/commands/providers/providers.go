package providers

import (
	"context"
	"flag"
	"fmt"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "List registered workspace providers"
}

func (c *Command) Help() string {
	return `Usage: postwoman providers [options]

  List every provider in the config file in priority order.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("providers", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	rt, cfg, err := c.Runtime(context.Background(), c.flagConfig)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer rt.Close()

	t := base.NewTable("ID", "NAME", "TYPE", "PRIORITY", "DESCRIPTION")
	for _, p := range rt.Service.Providers() {
		d := p.Decor()
		typ := ""
		if pc, ok := cfg.Provider(p.ID()); ok {
			typ = pc.Type
		}
		t.AppendRow([]any{p.ID(), d.Name, typ, d.Priority, d.Description})
	}
	c.UI.Output(t.Render())
	return 0
}
