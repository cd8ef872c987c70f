package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mosaicflow/mosaic"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	good = color.New(color.FgGreen)
	bad  = color.New(color.FgRed)
	info = color.New(color.FgCyan)
	dim  = color.New(color.FgHiBlack)
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <workflow.yaml>",
	Short: "Execute a workflow file",
	Long:  `Loads a workflow from a YAML file and executes every runnable node in dependency order. Independent branches run concurrently.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			bad.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			cfg.Generator.Provider = "dry-run"
		}

		gen, err := buildGenerator(cfg)
		if err != nil {
			bad.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if gen == nil {
			bad.Println("Error: no generator configured; pass --dry-run or set [generator] in the config")
			os.Exit(1)
		}

		wf, err := loadWorkflowFile(args[0])
		if err != nil {
			bad.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		hooks := domain.LifecycleHooks{
			OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
				dim.Printf("  running %s (%s)\n", e.NodeID, e.Kind)
			},
			OnNodeFinish: func(_ context.Context, e *domain.NodeEvent) {
				if e.Success {
					good.Printf("  done    %s\n", e.NodeID)
				} else {
					bad.Printf("  failed  %s: %s\n", e.NodeID, e.Error)
				}
			},
		}

		eng := mosaic.New(
			mosaic.WithGenerator(gen),
			mosaic.WithLifecycleHooks(hooks),
			mosaic.WithLogger(newLogger(cfg)),
		)
		eng.Load(*wf)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			info.Println("\nstopping run...")
			eng.Stop()
		}()

		info.Printf("Running %s\n", args[0])
		report := eng.ExecuteAll(ctx)

		fmt.Println()
		switch {
		case report.Stopped:
			info.Printf("Stopped: %d completed, %d failed\n", len(report.Completed), len(report.Failed))
		case report.Success:
			good.Printf("Success: %d nodes completed\n", len(report.Completed))
		default:
			bad.Printf("Finished with errors: %d completed, %d failed\n",
				len(report.Completed), len(report.Failed))
			for _, e := range report.Errors {
				bad.Printf("  %s: %s\n", e.NodeID, e.Message)
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "Execute with a placeholder generator instead of a real backend")
}
