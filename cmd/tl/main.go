package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"task-list/internal/cli"
)

func main() {
	// Storage is opened lazily by the root command once flags and config are known
	root := cli.NewRootCommand(cli.DefaultAPIFactory(afero.NewOsFs()))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
