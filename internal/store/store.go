// Package store keeps a library of movies in sqlite.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/coreman2200/funtimes-bounce/internal/movie"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotFound = errors.New("store: movie not found")

type Store struct {
	*sql.DB
}

// Entry describes a stored movie without its events.
type Entry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Duration float64   `json:"duration"`
	Events   int       `json:"events"`
	Created  time.Time `json:"created"`
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func (s *Store) migrateUp() error {
	// m is not closed: that would close the shared connection.
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version returns the schema version, 0 before any migration.
func (s *Store) Version() (uint, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, err
	}
	v, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	return v, err
}

// Save stores m under a new id and returns it.
func (s *Store) Save(m *movie.Movie) (string, error) {
	body, err := movie.Marshal(m)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = s.Exec(
		`INSERT INTO movies (movie_id, name, duration, event_count, body, created_ns) VALUES (?, ?, ?, ?, ?, ?)`,
		id, m.Name, m.Duration(), m.Len(), body, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("save movie: %w", err)
	}
	log.Info().Str("id", id).Str("name", m.Name).Int("events", m.Len()).Msg("movie saved")
	return id, nil
}

func (s *Store) Load(id string) (*movie.Movie, error) {
	var body []byte
	err := s.QueryRow(`SELECT body FROM movies WHERE movie_id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load movie %s: %w", id, err)
	}
	return movie.Unmarshal(body)
}

// List returns all stored movies, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.Query(`SELECT movie_id, name, duration, event_count, created_ns FROM movies ORDER BY created_ns DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		var ns int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Duration, &e.Events, &ns); err != nil {
			return nil, err
		}
		e.Created = time.Unix(0, ns)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Delete(id string) error {
	res, err := s.Exec(`DELETE FROM movies WHERE movie_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
