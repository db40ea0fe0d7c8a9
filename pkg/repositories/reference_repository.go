package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JakitaK/dataset-webapi-group2/pkg/database"
)

// RefKind identifies one of the reference-entity tables. Each kind is
// keyed by an exact-match unique name.
type RefKind string

const (
	KindDirector RefKind = "director"
	KindGenre    RefKind = "genre"
	KindActor    RefKind = "actor"
)

// refTables maps each kind to its table and id column.
var refTables = map[RefKind]struct {
	table    string
	idColumn string
}{
	KindDirector: {table: "director", idColumn: "director_id"},
	KindGenre:    {table: "genre", idColumn: "genre_id"},
	KindActor:    {table: "actor", idColumn: "actor_id"},
}

// InsertOutcome is the result of attempting to insert a row that may
// already exist. A unique-constraint violation is a normal outcome here,
// not an error: the desired end state (the row exists exactly once) is
// already satisfied.
type InsertOutcome int

const (
	OutcomeInserted InsertOutcome = iota
	OutcomeAlreadyExists
)

// ReferenceRepository provides data access for the reference-entity tables
// (director, genre, actor) and the placeholder country row.
type ReferenceRepository interface {
	// ListNames returns every name currently stored for the kind.
	ListNames(ctx context.Context, kind RefKind) ([]string, error)
	// InsertName inserts a single name, reporting OutcomeAlreadyExists
	// when a concurrent writer (or a stale snapshot) got there first.
	InsertName(ctx context.Context, kind RefKind, name string) (InsertOutcome, error)
	// ResolveIDs re-reads the kind's table and returns a name-to-id map.
	// A fresh read is the only authoritative id source: rows may have been
	// created by another writer since this process last looked.
	ResolveIDs(ctx context.Context, kind RefKind) (map[string]int64, error)
	// EnsureCountry inserts the named country if absent and returns its id.
	EnsureCountry(ctx context.Context, name string) (int64, error)
}

type referenceRepository struct {
	db *database.DB
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(db *database.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

var _ ReferenceRepository = (*referenceRepository)(nil)

func (r *referenceRepository) ListNames(ctx context.Context, kind RefKind) ([]string, error) {
	meta, ok := refTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf("SELECT name FROM %s", meta.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s names: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s name: %w", kind, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s names: %w", kind, err)
	}

	return names, nil
}

func (r *referenceRepository) InsertName(ctx context.Context, kind RefKind, name string) (InsertOutcome, error) {
	meta, ok := refTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown reference kind %q", kind)
	}

	_, err := r.db.Exec(ctx, fmt.Sprintf("INSERT INTO %s (name) VALUES ($1)", meta.table), name)
	if err != nil {
		// Unique constraint violation (PostgreSQL error code 23505) means
		// another writer inserted the same name first.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return OutcomeAlreadyExists, nil
		}
		return 0, fmt.Errorf("failed to insert %s %q: %w", kind, name, err)
	}

	return OutcomeInserted, nil
}

func (r *referenceRepository) ResolveIDs(ctx context.Context, kind RefKind) (map[string]int64, error) {
	meta, ok := refTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf("SELECT %s, name FROM %s", meta.idColumn, meta.table))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s ids: %w", kind, err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", kind, err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s ids: %w", kind, err)
	}

	return ids, nil
}

func (r *referenceRepository) EnsureCountry(ctx context.Context, name string) (int64, error) {
	_, err := r.db.Exec(ctx, "INSERT INTO country (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure country %q: %w", name, err)
	}

	var id int64
	err = r.db.QueryRow(ctx, "SELECT country_id FROM country WHERE name = $1", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up country %q: %w", name, err)
	}

	return id, nil
}
