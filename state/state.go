// Package state provides pluggable key/value stores used to persist and
// share control-plane state. The memory backend is authoritative for
// reads; badger and redis backends write through to durable or shared
// storage and keep the in-memory copy synchronized.
package state

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// SupportedSchemes lists the state engine URL schemes understood by New.
var SupportedSchemes = []string{"memory", "badger", "redis"}

// ErrKeyNotFound is returned by Get for absent keys.
var ErrKeyNotFound = fmt.Errorf("key not found")

// State is a concurrent key/value store. Mutations are serialized by the
// implementation; readers never observe a torn value.
type State[K comparable, V any] interface {
	Close() error
	Get(key K) (V, error)
	Add(key K, value V) error
	Delete(key K) error
	// Items returns a copy of the current contents.
	Items() (map[K]V, error)
	// Len returns the number of entries.
	Len() int
}

// New creates a state store from an engine URL such as "memory://",
// "badger:///var/lib/pktwall/policies" or
// "redis://localhost:6379/0?prefix=pktwall".
func New[K comparable, V any](rawURL string) (State[K, V], error) {
	urlParsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	memory := memoryState[K, V]{
		data: make(map[K]V),
		lock: new(sync.RWMutex),
	}
	switch urlParsed.Scheme {
	case "memory":
		return &memory, nil
	case "badger":
		bd := &badgerState[K, V]{
			memory:    memory,
			urlParsed: urlParsed,
		}
		if err = bd.init(); err != nil {
			return nil, err
		}
		return bd, nil
	case "redis", "rediss":
		ctx, cancel := context.WithCancel(context.Background())
		rd := &redisState[K, V]{
			memory:    memory,
			urlParsed: urlParsed,
			ctx:       ctx,
			cancel:    cancel,
			wg:        new(sync.WaitGroup),
		}
		if err = rd.init(); err != nil {
			cancel()
			return nil, err
		}
		return rd, nil
	default:
		return nil, fmt.Errorf("unknown state engine %s", urlParsed.Scheme)
	}
}
