// Package store provides a SQLite-backed cache of fetched datasets.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/budgetviz/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrMiss is returned when a source has never been cached.
var ErrMiss = errors.New("store: dataset not cached")

// Cache provides SQLite-backed dataset caching.
type Cache struct {
	db *sql.DB
}

// Entry describes one cached dataset.
type Entry struct {
	Source    string
	Topic     model.View
	Rows      int
	FetchedAt time.Time
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveDataset replaces the cached copy of a dataset, keyed by its source.
func (c *Cache) SaveDataset(d model.Dataset) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.Exec("DELETE FROM observations WHERE source = ?", d.Source); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO datasets (source, topic, row_count, fetched_at)
		VALUES (?, ?, ?, ?)`, d.Source, string(d.Topic), len(d.Observations), now)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO observations (source, seq, year, category, pct_gdp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, o := range d.Observations {
		if _, err := stmt.Exec(d.Source, i, o.Year, o.Category, o.ValuePctGDP); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadDataset reads a cached dataset for source, tagging it with topic.
// Observations come back in their original order.
func (c *Cache) LoadDataset(topic model.View, source string) (model.Dataset, error) {
	var rows int
	err := c.db.QueryRow("SELECT row_count FROM datasets WHERE source = ?", source).Scan(&rows)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrMiss, source)
	}
	if err != nil {
		return model.Dataset{}, err
	}

	q, err := c.db.Query(`SELECT year, category, pct_gdp FROM observations
		WHERE source = ? ORDER BY seq`, source)
	if err != nil {
		return model.Dataset{}, err
	}
	defer func() { _ = q.Close() }()

	d := model.Dataset{
		Topic:        topic,
		Source:       source,
		Observations: make([]model.Observation, 0, rows),
	}
	for q.Next() {
		var o model.Observation
		if err := q.Scan(&o.Year, &o.Category, &o.ValuePctGDP); err != nil {
			return model.Dataset{}, err
		}
		d.Observations = append(d.Observations, o)
	}
	return d, q.Err()
}

// Entries lists every cached dataset.
func (c *Cache) Entries() ([]Entry, error) {
	rows, err := c.db.Query("SELECT source, topic, row_count, fetched_at FROM datasets ORDER BY topic, source")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			topic   string
			fetched sql.NullString
		)
		if err := rows.Scan(&e.Source, &topic, &e.Rows, &fetched); err != nil {
			return nil, err
		}
		e.Topic = model.View(topic)
		if fetched.Valid && fetched.String != "" {
			e.FetchedAt, _ = time.Parse(time.RFC3339, fetched.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteDataset removes a cached dataset and its observations.
func (c *Cache) DeleteDataset(source string) error {
	_, err := c.db.Exec("DELETE FROM datasets WHERE source = ?", source)
	return err
}
