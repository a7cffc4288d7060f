package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "recall",
		Short:         "Upload recordings and search your memories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.url, "url", "", "Daemon base URL (default: derived from api.bind)")
	rootCmd.PersistentFlags().StringVar(&flags.owner, "owner", "", "Owner id sent with each request (default: $RECALL_OWNER)")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", "", "Bearer token (default: api.token)")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Emit JSON output")

	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newHealthCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
