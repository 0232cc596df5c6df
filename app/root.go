// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guildpoint",
	Short: "GuildPoint is a community platform backend",
	Long: `GuildPoint is a community platform backend where users create
organizations, define roles, and manage members, events, comments and reviews
behind organization-scoped permission checks.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
