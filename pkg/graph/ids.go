package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// NewIDSource returns a generator for node and edge identities. IDs combine a
// process-monotonic counter with a uuid fragment, so rapid programmatic
// creation cannot collide the way wall-clock derived ids do.
func NewIDSource(prefix string) func() string {
	var counter atomic.Uint64
	return func() string {
		n := counter.Add(1)
		return fmt.Sprintf("%s-%d-%s", prefix, n, uuid.NewString()[:8])
	}
}
