package reference

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"geosampler/internal/models"
)

// DefaultTable holds the reference points when no table is configured.
const DefaultTable = "postal_codes"

// Querier is the subset of pgx.Conn and pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads reference rows from a table with the columns
// name, postal_code, latitude and longitude.
type PostgresSource struct {
	db    Querier
	table string
}

func NewPostgresSource(db Querier, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{db: db, table: table}
}

// ConnectPostgres opens a single connection for a one-off load.
func ConnectPostgres(ctx context.Context, url string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Println("Successfully connected to reference database")
	return conn, nil
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT name, postal_code, latitude, longitude FROM %s ORDER BY postal_code",
		pgx.Identifier{s.table}.Sanitize(),
	)
}

func (s *PostgresSource) Load(ctx context.Context) (*Result, error) {
	rows, err := s.db.Query(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("failed to query reference table %s: %w", s.table, err)
	}
	defer rows.Close()

	res := &Result{}
	line := 0
	for rows.Next() {
		line++
		var rec nullableRow
		if err := rows.Scan(&rec.name, &rec.postalCode, &rec.latitude, &rec.longitude); err != nil {
			res.skip("postgres", line, err.Error())
			continue
		}
		row, err := rec.row()
		if err != nil {
			res.skip("postgres", line, err.Error())
			continue
		}
		res.accept(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reference table %s: %w", s.table, err)
	}
	return res, nil
}

type nullableRow struct {
	name       *string
	postalCode *string
	latitude   *float64
	longitude  *float64
}

func (n nullableRow) row() (models.Row, error) {
	switch {
	case n.name == nil:
		return models.Row{}, fmt.Errorf("missing name")
	case n.postalCode == nil:
		return models.Row{}, fmt.Errorf("missing postal code")
	case n.latitude == nil:
		return models.Row{}, fmt.Errorf("missing latitude")
	case n.longitude == nil:
		return models.Row{}, fmt.Errorf("missing longitude")
	}
	row := models.Row{
		Name:       *n.name,
		PostalCode: *n.postalCode,
		Latitude:   *n.latitude,
		Longitude:  *n.longitude,
	}
	return row, row.Validate()
}
