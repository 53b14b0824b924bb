package network

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// KeyRing holds the api keys of a client and the one currently in use.
// It is safe for concurrent use.
type KeyRing struct {
	mu      sync.Mutex
	keys    []string
	current int

	log *logger.Logger
}

// NewKeyRing creates a ring starting with the first key.
func NewKeyRing(keys []string, log *logger.Logger) (*KeyRing, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one api key is required")
	}
	for i, k := range keys {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("api key %d is empty", i)
		}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &KeyRing{
		keys: append([]string(nil), keys...),
		log:  log,
	}, nil
}

// Current returns the key in use.
func (k *KeyRing) Current() string {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.keys[k.current]
}

// Len returns the number of keys.
func (k *KeyRing) Len() int {
	return len(k.keys)
}

// rotate moves to the key after used. It does nothing when another caller
// already rotated away from used.
func (k *KeyRing) rotate(used string) string {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.keys[k.current] == used {
		k.current = (k.current + 1) % len(k.keys)
		keyRotations.Inc()
		k.log.Warnf("api key %s is rate limited, switching to key #%d", mask(used), k.current)
	}

	return k.keys[k.current]
}

// Do calls fn with the current key. When fn fails with a rate limit error it is
// retried with the next key, at most once per key.
func (k *KeyRing) Do(fn func(key string) error) error {
	key := k.Current()

	for attempt := 1; ; attempt++ {
		err := fn(key)
		if err == nil || !types.IsRateLimitError(err) || attempt >= len(k.keys) {
			return err
		}

		key = k.rotate(key)
	}
}

func mask(key string) string {
	const visible = 4
	if len(key) <= visible {
		return "****"
	}
	return key[:visible] + "****"
}
