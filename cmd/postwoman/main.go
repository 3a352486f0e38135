package main

import (
	"os"

	"github.com/jamesgeorge007/postwoman/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
