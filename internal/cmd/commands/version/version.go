package version

import (
	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	"github.com/jamesgeorge007/postwoman/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: postwoman version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.String())
	return 0
}
