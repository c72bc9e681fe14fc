package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/gym-booker/internal/internaltypes"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gymbook",
		Short:         "Books a GoodLife Fitness class by driving a real browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", internaltypes.ErrInvalidConfig, err)
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBookCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCode(err))
	}
}
