package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/coreman2200/funtimes-bounce/internal/movie"
	"github.com/coreman2200/funtimes-bounce/internal/store"
)

// Library loads stored movies into a Core.
type Library struct {
	Store *store.Store
	Core  *Core
}

func (l *Library) List() ([]store.Entry, error) { return l.Store.List() }

// LoadInto fetches id and queues it for the loop goroutine.
func (l *Library) LoadInto(id string) error {
	m, err := l.Store.Load(id)
	if err != nil {
		return err
	}
	l.Core.Do(func() { l.Core.Load(m) })
	return nil
}

// OpenMovie resolves ref as a movie JSON file, falling back to a library id
// when no such file exists and st is not nil.
func OpenMovie(ref string, st *store.Store) (*movie.Movie, error) {
	f, err := os.Open(ref)
	if err == nil {
		defer f.Close()
		m, err := movie.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		return m, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || st == nil {
		return nil, err
	}
	return st.Load(ref)
}
