/*
Package dsl provides a Go DSL for programmatically constructing media
workflow graphs.

It lets tests and hosts define pipelines with a type-safe fluent builder
instead of hand-assembling node and edge structs, with automatic left-to-right
layout.

Example usage:

	package main

	import (
		"github.com/mosaicflow/mosaic"
		"github.com/mosaicflow/mosaic/pkg/domain"
		"github.com/mosaicflow/mosaic/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		prompt := b.Prompt("a storm rolling over the coast")
		video := b.TextVideo().Duration(8).Aspect("16:9").PromptFrom(prompt)
		b.Subtitles("en").VideoFrom(video, domain.HandleVideo)

		nodes, edges := b.Build()

		eng := mosaic.New()
		eng.Load(domain.Workflow{ID: "storm", Nodes: nodes, Edges: edges})
	}
*/
package dsl
