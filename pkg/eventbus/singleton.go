package eventbus

import (
	"log/slog"
	"sync"
)

// Exactly one bus instance exists process-wide. A mutex, not a
// sync.Once, guards construction: a failed Init leaves the singleton
// unset so a later Init can retry instead of handing out nil.
var (
	defaultMu  sync.Mutex
	defaultBus *Bus
)

// Init builds and starts the process-wide bus with the given
// configuration. The first successful call wins; later calls return the
// existing instance. A construction failure is returned so startup can
// abort, and does not latch: the next Init or Default builds afresh.
func Init(cfg Config, logger *slog.Logger) (*Bus, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBus != nil {
		return defaultBus, nil
	}
	b, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	b.Start()
	defaultBus = b
	return defaultBus, nil
}

// Default returns the process-wide bus, lazily initializing it with
// DefaultConfig when no Init has succeeded. The default configuration
// cannot fail validation, so this path never errors.
func Default() *Bus {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBus == nil {
		b, err := New(DefaultConfig(), slog.Default())
		if err != nil {
			// Unreachable with DefaultConfig; keep the invariant loud.
			panic(err)
		}
		b.Start()
		defaultBus = b
	}
	return defaultBus
}
