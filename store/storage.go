package store

import (
	"context"
	"database/sql"
	"log"

	"docchat/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type DBStorer interface {
	UpsertDocument(context.Context, types.Document) (uuid.UUID, error)
	GetDocumentBySource(context.Context, uuid.UUID, string) (*types.Document, error)
	ListSources(context.Context, uuid.UUID) ([]string, error)
	AppendChat(context.Context, types.ChatEntry) error
	ListHistory(context.Context, uuid.UUID, *uuid.UUID) ([]types.ChatEntry, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

// UpsertDocument writes one document row. On conflict over (user_id, source)
// the content, file bytes and embedding are overwritten in place; id and
// owner stay stable. The row id is returned either way.
func (p *PostgresStore) UpsertDocument(ctx context.Context, doc types.Document) (uuid.UUID, error) {
	query := `INSERT INTO documents (user_id, source, content, file_content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, source) DO UPDATE SET
			content = EXCLUDED.content,
			file_content = EXCLUDED.file_content,
			embedding = EXCLUDED.embedding
		RETURNING id
		`
	var id uuid.UUID
	err := p.pool.QueryRow(
		ctx,
		query,
		doc.UserID,
		doc.Source,
		doc.Content,
		doc.FileContent,
		embeddingValue(doc.Embedding),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (p *PostgresStore) GetDocumentBySource(ctx context.Context, userID uuid.UUID, source string) (*types.Document, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id, user_id, source, content, file_content, created_at FROM documents WHERE user_id = $1 AND source = $2",
		userID, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	doc := &types.Document{}
	if err := rows.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Source,
		&doc.Content,
		&doc.FileContent,
		&doc.CreatedAt); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *PostgresStore) ListSources(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT source FROM documents WHERE user_id = $1 ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// AppendChat is insert-only; there is no update or delete path for history.
func (p *PostgresStore) AppendChat(ctx context.Context, entry types.ChatEntry) error {
	query := `
    INSERT INTO chat_history (user_id, document_id, document_name, question, answer)
    VALUES ($1, $2, $3, $4, $5)
    `
	_, err := p.pool.Exec(ctx, query,
		entry.UserID, entry.DocumentID, entry.DocumentName, entry.Question, entry.Answer,
	)
	return err
}

func (p *PostgresStore) ListHistory(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) ([]types.ChatEntry, error) {
	query := `
		SELECT id, user_id, document_id, document_name, question, answer, created_at
		FROM chat_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if documentID != nil {
		query = `
		SELECT id, user_id, document_id, document_name, question, answer, created_at
		FROM chat_history
		WHERE user_id = $1 AND document_id = $2
		ORDER BY created_at DESC
		`
		args = append(args, *documentID)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.ChatEntry
	for rows.Next() {
		var e types.ChatEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.DocumentID,
			&e.DocumentName,
			&e.Question,
			&e.Answer,
			&e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// embeddingValue keeps the embedding column NULL when the embedder
// produced nothing instead of writing a zero-length vector.
func embeddingValue(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func (p *PostgresStore) createTables(ctx context.Context) error {

	query := `
	CREATE EXTENSION IF NOT EXISTS vector;
	CREATE EXTENSION IF NOT EXISTS pgcrypto;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		source TEXT NOT NULL,
		content TEXT NOT NULL,
		file_content BYTEA,
		embedding vector(384),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, source)
	);

	CREATE TABLE IF NOT EXISTS chat_history (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		document_id UUID REFERENCES documents(id),
		document_name TEXT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id);
	CREATE INDEX IF NOT EXISTS idx_chat_history_user_id ON chat_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_chat_history_document_id ON chat_history(document_id);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
