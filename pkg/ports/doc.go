// Package ports defines the narrow contracts between the engine core and its
// collaborators: generation back-ends, media resolution and workflow
// persistence. Hosts implement these; the core only calls them.
package ports
