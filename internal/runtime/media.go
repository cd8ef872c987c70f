package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mosaicflow/mosaic/pkg/ports"
)

// maxInlineBytes is the transport ceiling for inlined media. Payloads above
// it walk the quality ladder until they fit; the lowest rung is accepted as a
// last resort rather than failing the node.
const maxInlineBytes = 4 << 20

var qualityLadder = []int{85, 70, 55, 40, 25}

// isRemoteRef reports whether a media reference is already reachable by the
// generation collaborator: an http(s) URL or an inlined data blob.
func isRemoteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:")
}

// inlineRef converts a locally-hosted reference into a data URI under the
// byte ceiling, recompressing through the quality ladder as needed.
func inlineRef(ctx context.Context, resolver ports.MediaResolver, ref string) (string, error) {
	data, mime, err := resolver.Fetch(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve media reference %q: %w", ref, err)
	}

	if len(data) > maxInlineBytes {
		for _, q := range qualityLadder {
			smaller, err := resolver.Encode(ctx, data, mime, q)
			if err != nil {
				return "", fmt.Errorf("recompress media reference %q: %w", ref, err)
			}
			data = smaller
			if len(data) <= maxInlineBytes {
				break
			}
		}
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// transportSafe leaves remote references untouched and inlines local ones.
func (s *Scheduler) transportSafe(ctx context.Context, ref string) (string, error) {
	if ref == "" || isRemoteRef(ref) {
		return ref, nil
	}
	if s.media == nil {
		return "", fmt.Errorf("local media reference %q: no media resolver configured", ref)
	}
	return inlineRef(ctx, s.media, ref)
}
