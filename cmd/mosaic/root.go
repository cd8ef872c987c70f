package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Mosaic is a node-based media workflow engine",
	Long:  `Mosaic executes graphs of media generation and editing nodes: prompts feed generators, generators feed editors, and every branch runs concurrently where dependencies allow.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "mosaic.toml", "Path to the config file")
}
