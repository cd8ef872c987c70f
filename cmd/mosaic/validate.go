package main

import (
	"fmt"
	"os"

	"github.com/mosaicflow/mosaic"
	"github.com/mosaicflow/mosaic/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.yaml>",
	Short: "Check a workflow for consistency",
	Long:  `Inspects a workflow file and reports dangling edges, incompatible handle pairs, dependency cycles, and nodes missing required inputs.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Workflow is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	wf, err := loadWorkflowFile(path)
	if err != nil {
		return err
	}

	if err := validator.ValidateGraph(wf.Nodes, wf.Edges); err != nil {
		return err
	}

	// Structural checks passed; now report nodes that could not run.
	eng := mosaic.New()
	eng.Load(*wf)

	var notReady []string
	for _, n := range wf.Nodes {
		if !n.Kind.Executable() {
			continue
		}
		if ok, reason := eng.CanExecute(n.ID); !ok {
			notReady = append(notReady, fmt.Sprintf("%s (%s): %s", n.ID, n.Kind, reason))
		}
	}
	if len(notReady) > 0 {
		fmt.Println("Warning: some nodes are missing inputs and will fail if executed:")
		for _, msg := range notReady {
			fmt.Printf("  - %s\n", msg)
		}
	}
	return nil
}
