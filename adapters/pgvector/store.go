// Package pgvector provides a retrieval store backed by PostgreSQL with
// the pgvector extension. Segments are namespaced per document so repeated
// runs over the same filing replace the previous index.
package pgvector

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/retrieval"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool      *pgxpool.Pool
	tableName string
	namespace string
	dimension int
}

type Options struct {
	TableName string
	Namespace string
	Dimension int
}

func NewStore(ctx context.Context, connString string, opts Options) (*Store, error) {
	if opts.TableName == "" {
		opts.TableName = "segments"
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	return &Store{
		pool:      pool,
		tableName: opts.TableName,
		namespace: opts.Namespace,
		dimension: opts.Dimension,
	}, nil
}

// WithNamespace returns a store over the same pool scoped to a different
// namespace. Used to give each document task its own index.
func (p *Store) WithNamespace(namespace string) *Store {
	clone := *p
	clone.namespace = namespace
	return &clone
}

// InitDB initializes the database schema
func (p *Store) InitDB(ctx context.Context, forceRecreate bool) error {
	_, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("error creating vector extension: %w", err)
	}

	if forceRecreate {
		_, err = p.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", p.tableName))
		if err != nil {
			return fmt.Errorf("error dropping table: %w", err)
		}
	}

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			namespace TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			content TEXT NOT NULL,
			byte_offset INTEGER NOT NULL,
			section TEXT,
			embedding vector(%d),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`, p.tableName, p.dimension)

	_, err = p.pool.Exec(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)
	`, p.tableName, p.tableName)

	_, err = p.pool.Exec(ctx, indexSQL)
	if err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}

	return nil
}

// Add appends segments to the store's namespace; ordinals continue from
// the current maximum so insertion order is preserved.
func (p *Store) Add(ctx context.Context, segments []document.Segment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return retrieval.NewBuildFailedError("Add",
			fmt.Errorf("segment/vector count mismatch: %d != %d", len(segments), len(vectors)))
	}

	var base int
	err := p.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(ordinal) + 1, 0) FROM %s WHERE namespace = $1", p.tableName),
		p.namespace,
	).Scan(&base)
	if err != nil {
		return retrieval.NewBuildFailedError("Add", err)
	}

	batch := &pgx.Batch{}
	insertSQL := fmt.Sprintf(`
		INSERT INTO %s (namespace, ordinal, content, byte_offset, section, embedding)
		VALUES ($1, $2, $3, $4, $5, $6::vector)
	`, p.tableName)

	for i, seg := range segments {
		batch.Queue(insertSQL, p.namespace, base+i, seg.Text, seg.Offset, seg.Section,
			formatVectorForPG(vectors[i]))
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(segments); i++ {
		if _, err := results.Exec(); err != nil {
			return retrieval.NewBuildFailedError("Add",
				fmt.Errorf("error inserting segment %d: %w", i, err))
		}
	}

	return nil
}

// Search returns the k nearest segments in the store's namespace by
// cosine similarity, ties broken by insertion order.
func (p *Store) Search(ctx context.Context, vector []float32, k int) ([]retrieval.Match, error) {
	query := fmt.Sprintf(`
		SELECT
			content,
			byte_offset,
			section,
			ordinal,
			1 - (embedding <=> $1::vector) as similarity
		FROM %s
		WHERE namespace = $2
		ORDER BY embedding <=> $1::vector, ordinal
		LIMIT $3
	`, p.tableName)

	rows, err := p.pool.Query(ctx, query, formatVectorForPG(vector), p.namespace, k)
	if err != nil {
		return nil, retrieval.NewSearchFailedError("Search", err)
	}
	defer rows.Close()

	var matches []retrieval.Match
	for rows.Next() {
		var m retrieval.Match
		var section *string
		if err := rows.Scan(&m.Segment.Text, &m.Segment.Offset, &section, &m.Ordinal, &m.Score); err != nil {
			return nil, retrieval.NewSearchFailedError("Search", err)
		}
		if section != nil {
			m.Segment.Section = *section
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, retrieval.NewSearchFailedError("Search", err)
	}

	return matches, nil
}

// Reset removes all segments in the store's namespace.
func (p *Store) Reset(ctx context.Context) error {
	_, err := p.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE namespace = $1", p.tableName), p.namespace)
	if err != nil {
		return fmt.Errorf("error deleting segments: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (p *Store) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// formatVectorForPG converts a float32 slice to a PostgreSQL vector literal
func formatVectorForPG(vector []float32) string {
	var b strings.Builder
	b.WriteString("[")
	for i, v := range vector {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("%.9f", float64(v)))
	}
	b.WriteString("]")
	return b.String()
}
