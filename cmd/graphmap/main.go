// Command graphmap turns a clustered graph into a map of countries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmap/internal/cli"
	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps its error to an exit status:
// 130 after an interrupt, 2 for bad input or configuration, 1 otherwise.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRoot().ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintln(os.Stderr, err)
	if apperrors.IsUserError(err) {
		return 2
	}
	return 1
}

func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	pre := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if pre == nil {
			return nil
		}
		return pre(cmd, args)
	}
	return root
}
