package ratetable

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Load reads and validates the stored document for year.
func (s *Store) Load(ctx context.Context, year int) (*Table, error) {
	var document string
	err := s.DB.QueryRow(ctx, `
    SELECT document
    FROM rate_tables
    WHERE year = $1
  `, year).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: year %d", ErrNotFound, year)
	}
	if err != nil {
		return nil, err
	}
	table, err := Parse([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("rate table %d: %w", year, err)
	}
	if table.Year != year {
		return nil, fmt.Errorf("%w: stored document for %d declares year %d", ErrInvalidTable, year, table.Year)
	}
	return table, nil
}

// Save validates document and upserts it under the year it declares.
func (s *Store) Save(ctx context.Context, document []byte) (int, error) {
	table, err := Parse(document)
	if err != nil {
		return 0, err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO rate_tables (year, document)
    VALUES ($1, $2)
    ON CONFLICT (year) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
  `, table.Year, string(document))
	if err != nil {
		return 0, err
	}
	return table.Year, nil
}

// EnsureDefault stores the embedded table when no row exists for its year.
func (s *Store) EnsureDefault(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO rate_tables (year, document)
    VALUES ($1, $2)
    ON CONFLICT (year) DO NOTHING
  `, DefaultYear, string(defaultDocument))
	return err
}

func (s *Store) ListYears(ctx context.Context) ([]int, error) {
	rows, err := s.DB.Query(ctx, `SELECT year FROM rate_tables ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, rows.Err()
}
