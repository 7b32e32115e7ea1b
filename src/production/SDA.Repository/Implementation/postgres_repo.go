package implementation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
)

// ConnectPostgres opens and pings a PostgreSQL pool within timeout
func ConnectPostgres(dsn string, maxConns, minConns int, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open PostgreSQL connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// CreateTables creates the manifest and label tables when missing
func CreateTables(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS manifests (
			manifest_id TEXT PRIMARY KEY,
			img         TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			yaml        TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS labels (
			kind TEXT NOT NULL,
			id   TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (kind, id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// PostgresStore keeps manifests and labels in PostgreSQL
type PostgresStore struct {
	db        *sql.DB
	manifests *PostgresManifestRepository
	labels    *PostgresLabelRepository
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:        db,
		manifests: NewPostgresManifestRepository(db),
		labels:    NewPostgresLabelRepository(db),
	}
}

func (s *PostgresStore) Manifests() interfaces.ManifestRepository { return s.manifests }
func (s *PostgresStore) Labels() interfaces.LabelRepository       { return s.labels }

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

type PostgresManifestRepository struct {
	db *sql.DB
}

func NewPostgresManifestRepository(db *sql.DB) *PostgresManifestRepository {
	return &PostgresManifestRepository{db: db}
}

func (r *PostgresManifestRepository) CreateManifest(ctx context.Context, manifest sdamodels.Manifest) (*sdamodels.Manifest, error) {
	query := `
		INSERT INTO manifests (manifest_id, img, name, description, yaml, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	m := prepareManifest(manifest)
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.Img, m.Name, m.Description, m.Yaml, m.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert manifest: %w", err)
	}
	return &m, nil
}

func (r *PostgresManifestRepository) GetManifest(ctx context.Context, id string) (*sdamodels.Manifest, error) {
	query := `SELECT manifest_id, img, name, description, yaml, created_at FROM manifests WHERE manifest_id = $1`

	var m sdamodels.Manifest
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Img, &m.Name, &m.Description, &m.Yaml, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresManifestRepository) ListManifests(ctx context.Context) ([]sdamodels.Manifest, error) {
	query := `SELECT manifest_id, img, name, description, yaml, created_at FROM manifests ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	manifests := make([]sdamodels.Manifest, 0)
	for rows.Next() {
		var m sdamodels.Manifest
		if err := rows.Scan(&m.ID, &m.Img, &m.Name, &m.Description, &m.Yaml, &m.CreatedAt); err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return manifests, nil
}

func (r *PostgresManifestRepository) DeleteManifest(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM manifests WHERE manifest_id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type PostgresLabelRepository struct {
	db *sql.DB
}

func NewPostgresLabelRepository(db *sql.DB) *PostgresLabelRepository {
	return &PostgresLabelRepository{db: db}
}

// Set label (idempotent upsert)
func (r *PostgresLabelRepository) SetLabel(ctx context.Context, label sdamodels.Label) error {
	query := `
		INSERT INTO labels (kind, id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, id)
		DO UPDATE SET name = EXCLUDED.name
	`
	_, err := r.db.ExecContext(ctx, query, string(label.Kind), label.ID, label.Name)
	return err
}

func (r *PostgresLabelRepository) GetLabel(ctx context.Context, kind sdamodels.LabelKind, id string) (*sdamodels.Label, error) {
	l := sdamodels.Label{Kind: kind, ID: id}
	err := r.db.QueryRowContext(ctx, `SELECT name FROM labels WHERE kind = $1 AND id = $2`, string(kind), id).Scan(&l.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PostgresLabelRepository) ListLabels(ctx context.Context, kind sdamodels.LabelKind) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM labels WHERE kind = $1`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (r *PostgresLabelRepository) DeleteLabel(ctx context.Context, kind sdamodels.LabelKind, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM labels WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}
