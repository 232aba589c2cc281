package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Postgres is the fallback Searcher used when Meilisearch is not configured
// or unreachable. It matches task title and description with ILIKE, scoped to
// the caller's boards.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Healthy reports whether the database is reachable.
func (p *Postgres) Healthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.db.PingContext(ctx) == nil
}

// Search runs an owner-scoped substring match over tasks.
func (p *Postgres) Search(q Query) ([]Result, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	pattern := "%" + escapeLike(q.Text) + "%"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var total int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id=$1
		  AND (t.title ILIKE $2 OR t.description ILIKE $2)
	`, q.OwnerID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count search matches: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.description, t.status, t.column_id, c.board_id
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		WHERE b.owner_id=$1
		  AND (t.title ILIKE $2 OR t.description ILIKE $2)
		ORDER BY t.position ASC, t.id ASC
		LIMIT $3 OFFSET $4
	`, q.OwnerID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var item Result
		var description string
		if err := rows.Scan(&item.ID, &item.Title, &description, &item.Status, &item.Column, &item.Board); err != nil {
			return nil, 0, fmt.Errorf("scan search match: %w", err)
		}
		item.Snippet = snippet(description)
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search matches: %w", err)
	}
	return results, total, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func snippet(description string) string {
	const maxRunes = 160
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) <= maxRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}
