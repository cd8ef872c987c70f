/*
Package mosaic is a node-based media workflow engine. It models a canvas of
typed nodes (prompts, media inputs, image and video generators, editors)
connected by handle-typed edges, and executes the graph against a pluggable
generation backend.

The engine keeps three cooperating pieces of state: the live graph, a bounded
undo history, and a clipboard. Execution walks the graph in dependency order,
running independent branches concurrently, and writes results back into node
data so downstream nodes can consume them.

# Usage

Create an engine, build a graph, and run it:

	package main

	import (
		"context"
		"log"

		"github.com/mosaicflow/mosaic"
		"github.com/mosaicflow/mosaic/pkg/domain"
	)

	func main() {
		eng := mosaic.New(
			mosaic.WithGenerator(myGenerator),
		)

		prompt := eng.AddNode(domain.KindPrompt, domain.Position{X: 0, Y: 0},
			domain.NodeData{Prompt: "a lighthouse at dusk"})
		image := eng.AddNode(domain.KindImageGen, domain.Position{X: 250, Y: 0},
			domain.NodeData{})

		eng.Connect(domain.Edge{
			Source:       prompt.ID,
			Target:       image.ID,
			SourceHandle: domain.HandlePrompt,
			TargetHandle: domain.HandlePrompt,
		})

		report := eng.ExecuteAll(context.Background())
		if !report.Success {
			log.Fatalf("run failed: %+v", report.Errors)
		}
	}

Hosts that need persistence wire one of the pkg/adapters stores; hosts that
need a UI or API surface sit on top of the same Engine methods the CLI and
HTTP server in this repository use.
*/
package mosaic
