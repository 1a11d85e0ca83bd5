package tokenizer

import "sync"

// Registry caches resolved tokenizers by requested encoding/model name so
// repeated lookups (e.g. by the chunker, once per run) don't
// re-parse the BPE tables. Safe for concurrent use: tiktoken-go's
// *tiktoken.Tiktoken is stateless once constructed, so a shared instance
// can be read from multiple goroutines.
type Registry struct {
	mu    sync.RWMutex
	cache map[string]Tokenizer
}

// NewRegistry creates an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{cache: make(map[string]Tokenizer)}
}

// defaultRegistry is the process-wide registry new callers get via Get
// unless they construct their own Registry explicitly (e.g. for test
// isolation).
var defaultRegistry = NewRegistry()

// Get returns the process-wide default registry.
func Get() *Registry { return defaultRegistry }

// Tokenizer returns the tokenizer for name, resolving and caching it on
// first use. name is tried as an explicit encoding, then as a model name,
// then DefaultEncoding is used.
func (r *Registry) Tokenizer(name string) (Tokenizer, error) {
	key := name
	if key == "" {
		key = DefaultEncoding
	}

	r.mu.RLock()
	if tok, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return tok, nil
	}
	r.mu.RUnlock()

	enc, resolvedName, err := resolve(name)
	if err != nil {
		return nil, err
	}
	tok := NewTiktoken(resolvedName, enc)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[key]; ok {
		return existing, nil
	}
	r.cache[key] = tok
	if resolvedName != key {
		r.cache[resolvedName] = tok
	}
	return tok, nil
}
