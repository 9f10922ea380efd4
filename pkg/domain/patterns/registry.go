package patterns

import (
	"fmt"
	"sync/atomic"
)

// Snapshot pairs a library with the corpus it was loaded alongside.
type Snapshot struct {
	Library *Library
	Corpus  *Corpus
}

// Registry holds the active snapshot. Analyses take a snapshot at start and
// keep using it, so a reload never changes an analysis already in flight.
type Registry struct {
	current atomic.Pointer[Snapshot]
}

// NewRegistry creates a registry serving the given library and corpus.
func NewRegistry(lib *Library, corpus *Corpus) *Registry {
	r := &Registry{}
	r.Store(lib, corpus)
	return r
}

// NewDefaultRegistry creates a registry from the built-in data.
func NewDefaultRegistry() (*Registry, error) {
	lib, err := DefaultLibrary()
	if err != nil {
		return nil, fmt.Errorf("load default library: %w", err)
	}
	corpus, err := DefaultCorpus()
	if err != nil {
		return nil, fmt.Errorf("load default corpus: %w", err)
	}
	return NewRegistry(lib, corpus), nil
}

// Current returns the active snapshot.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Store replaces the active snapshot. A nil corpus is stored as empty.
func (r *Registry) Store(lib *Library, corpus *Corpus) {
	if corpus == nil {
		corpus = &Corpus{}
	}
	r.current.Store(&Snapshot{Library: lib, Corpus: corpus})
}

// Reload parses new library and corpus sources and swaps them in. On error
// the previous snapshot stays active. A nil source keeps the current value.
func (r *Registry) Reload(libraryYAML, corpusYAML []byte) error {
	cur := r.Current()
	lib, corpus := cur.Library, cur.Corpus
	if libraryYAML != nil {
		l, err := ParseLibrary(libraryYAML)
		if err != nil {
			return fmt.Errorf("reload library: %w", err)
		}
		lib = l
	}
	if corpusYAML != nil {
		c, err := ParseCorpus(corpusYAML)
		if err != nil {
			return fmt.Errorf("reload corpus: %w", err)
		}
		corpus = c
	}
	r.Store(lib, corpus)
	return nil
}
