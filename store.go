package catscope

import (
	"sort"
	"strings"
	"sync"
)

// GetOptions modify the behaviour of a single Store.Get call.
type GetOptions struct {
	// Default is returned when the key is unset.
	Default string

	// WriteDefault persists Default under the key when it is unset, making
	// the key visible to a storage inspector.
	WriteDefault bool
}

// Store is a hierarchical key-value namespace. Implementations must join
// subspace names with "/" so that a key "categories:api" in the subspace
// "logging" of the namespace "myapp" is stored as
// "myapp/logging/categories:api".
type Store interface {
	// Get returns the value stored under key. The second return value
	// reports whether the key was set before the call.
	Get(key string, opts *GetOptions) (string, bool)

	// Set stores value under key.
	Set(key, value string)

	// Subspace returns a view of the store rooted at name.
	Subspace(name string) Store

	// Name returns the full namespace path of this store.
	Name() string
}

// joinKey prepends the namespace path of a store view to a key.
func joinKey(name, key string) string {
	if name == "" {
		return key
	}
	return name + "/" + key
}

// mapData is the backing map shared by all subspace views of a MapStore.
type mapData struct {
	mu sync.Mutex
	kv map[string]string
}

// MapStore is an in-memory Store. All subspace views share the same
// backing map, so values written through one view are visible through
// every other view.
type MapStore struct {
	data *mapData
	name string
}

// NewMapStore creates an empty in-memory store rooted at namespace.
func NewMapStore(namespace string) *MapStore {
	return &MapStore{
		data: &mapData{kv: map[string]string{}},
		name: namespace,
	}
}

func (s *MapStore) Get(key string, opts *GetOptions) (string, bool) {
	o := GetOptions{}
	if opts != nil {
		o = *opts
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	k := joinKey(s.name, key)
	if v, ok := s.data.kv[k]; ok {
		return v, true
	}
	if o.WriteDefault {
		s.data.kv[k] = o.Default
	}
	return o.Default, false
}

func (s *MapStore) Set(key, value string) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.kv[joinKey(s.name, key)] = value
}

func (s *MapStore) Subspace(name string) Store {
	return &MapStore{data: s.data, name: joinKey(s.name, name)}
}

func (s *MapStore) Name() string {
	return s.name
}

// Keys returns all keys below this store view in lexical order.
func (s *MapStore) Keys() []string {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	prefix := joinKey(s.name, "")
	var keys []string
	for k := range s.data.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
