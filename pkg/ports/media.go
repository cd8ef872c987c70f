package ports

import "context"

// MediaResolver turns possibly-local media references into bytes the engine
// can inline, and re-encodes them when they exceed the transport ceiling.
type MediaResolver interface {
	// Fetch returns the raw bytes and mime type for a media reference.
	Fetch(ctx context.Context, ref string) (data []byte, mime string, err error)

	// Encode re-encodes media at the given quality (1-100). Implementations
	// may return the input unchanged for formats they cannot recompress.
	Encode(ctx context.Context, data []byte, mime string, quality int) ([]byte, error)
}
