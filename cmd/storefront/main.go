package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Inspect and publish storefront preferences",
		Long: `storefront resolves preferences documents and shows the facets, dependency
graph and backend queries a storefront would use.

Environment variables:
  STOREFRONT_RABBIT_URL   broker used by publish
  STOREFRONT_NAME         storefront name used by publish (default: default)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(popularCmd())
	rootCmd.AddCommand(publishCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
