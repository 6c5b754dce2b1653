package main

import (
	"fmt"
	"os"

	"insurai/config"
	"insurai/helper"
	"insurai/shared/logger"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Get()
			logger.InitLogger(cfg)
			logger.SetLogLevel(cfg)
		},
	}

	root.AddCommand(
		newActionCmd(helper.ActionUp, "Apply every pending migration"),
		newActionCmd(helper.ActionDown, "Roll back the latest migration"),
		newActionCmd(helper.ActionStepUp, "Apply the next pending migration"),
		newActionCmd(helper.ActionDrop, "Roll back every migration"),
		newVersionCmd(),
	)

	return root
}

func newActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helper.Runner(config.Get(), action)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := helper.Version(config.Get())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)

			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
