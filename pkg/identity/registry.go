package identity

import (
	"sort"

	"strongbox/pkg/crypto"
)

// Registry maps usernames to long-term public keys. It is built once at
// startup and read-only afterwards, which makes concurrent lookups from
// per-connection goroutines safe without locking.
type Registry struct {
	keys map[string]crypto.VerifyKey
}

// NewRegistry builds a registry from a username → public key mapping.
// The input map is copied; later mutation of the argument has no effect.
func NewRegistry(keys map[string]crypto.VerifyKey) *Registry {
	m := make(map[string]crypto.VerifyKey, len(keys))
	for name, key := range keys {
		k := make(crypto.VerifyKey, len(key))
		copy(k, key)
		m[name] = k
	}
	return &Registry{keys: m}
}

// Lookup returns the long-term public key registered for the username.
func (r *Registry) Lookup(username string) (crypto.VerifyKey, bool) {
	key, ok := r.keys[username]
	return key, ok
}

// Names returns the registered usernames in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.keys))
	for name := range r.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	return len(r.keys)
}
