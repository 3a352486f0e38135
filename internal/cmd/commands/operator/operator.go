package operator

import (
	"github.com/mitchellh/cli"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Perform operator-specific tasks"
}

func (c *Command) Help() string {
	return `Usage: postwoman operator <subcommand> [options] [args]

  This command groups subcommands for operators maintaining workspace
  stores.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
