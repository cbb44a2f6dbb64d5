package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
)

// Postgres keeps every collection in one JSONB table (see migrations/postgres).
type Postgres struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewPostgres(db *dbpg.DB, log *zerolog.Logger) (*Postgres, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &Postgres{db: db, log: log}, nil
}

func (p *Postgres) MigrateUp(ctx context.Context, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := p.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	p.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (p *Postgres) Insert(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	data, err := encodeDocument(id, doc)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
	`
	if _, err := p.db.ExecContext(ctx, query, collection, id, string(data)); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, doc any) error {
	data, err := encodeDocument(id, doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`
	if _, err := p.db.ExecContext(ctx, query, collection, id, string(data)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) QueryWhere(ctx context.Context, collection, field string, value any, out any) error {
	if !validField(field) {
		return fmt.Errorf("query %s: %w", collection, ErrInvalidField)
	}

	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND data->>$2 = $3
		ORDER BY created_at ASC
	`
	rows, err := p.db.QueryContext(ctx, query, collection, field, fmt.Sprint(value))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	return scanDocuments(rows, out)
}

func (p *Postgres) ListAll(ctx context.Context, collection, orderBy string, dir Direction, out any) error {
	if !validField(orderBy) {
		return ErrInvalidField
	}

	order := "ASC"
	if dir == Desc {
		order = "DESC"
	}
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1
		ORDER BY data->>$2 ` + order

	rows, err := p.db.QueryContext(ctx, query, collection, orderBy)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	return scanDocuments(rows, out)
}

func (p *Postgres) GetByID(ctx context.Context, collection, id string, out any) error {
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var data []byte
	if err := p.db.QueryRowContext(ctx, query, collection, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return json.Unmarshal(data, out)
}

func (p *Postgres) Close(context.Context) error {
	return p.db.Master.Close()
}

func scanDocuments(rows *sql.Rows, out any) error {
	var docs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate documents: %w", err)
	}
	return decodeList(docs, out)
}
