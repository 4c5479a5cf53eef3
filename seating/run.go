package seating

import (
	"math/rand"
	"time"

	"github.com/go-logr/logr"
)

// Run carries what one sequential search owns: its random source and where
// it reports progress. A Run must not be shared between goroutines.
type Run struct {
	Rand *rand.Rand
	Log  logr.Logger
}

// NewRun seeds a run. Seed 0 draws the seed from the clock; any other seed
// reproduces the same plans for the same catalog and iteration count.
func NewRun(seed int64, log logr.Logger) *Run {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Run{
		Rand: rand.New(rand.NewSource(seed)),
		Log:  log,
	}
}
