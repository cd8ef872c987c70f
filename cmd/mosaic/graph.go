package main

import (
	"fmt"
	"os"

	"github.com/mosaicflow/mosaic/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <workflow.yaml>",
	Short: "Export the workflow visualization",
	Long:  `Reads a workflow file and outputs a Mermaid diagram (graph LR) of its structure.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wf, err := loadWorkflowFile(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(wf.Nodes, wf.Edges, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
