package data

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/honganh1206/convodash/schema"
	"github.com/honganh1206/convodash/utils"
)

//go:embed schema.sql
var Schema string

var ErrInvalidPage = errors.New("invalid page")

type ConversationModel struct {
	DB *sql.DB
}

// ListParams selects one page. Zero time bounds are ignored; set bounds are
// inclusive.
type ListParams struct {
	Page           int
	PageSize       int
	StartCreatedAt time.Time
	EndCreatedAt   time.Time
	StartUpdatedAt time.Time
	EndUpdatedAt   time.Time
}

func New(createdAt, updatedAt time.Time) (schema.Conversation, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return schema.Conversation{}, err
	}

	return schema.Conversation{
		ID:        id.String(),
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

func (m *ConversationModel) Insert(ctx context.Context, conv schema.Conversation) error {
	query := `
		INSERT INTO conversations (id, created_at, updated_at)
		VALUES (?, ?, ?);
	`

	_, err := m.DB.ExecContext(ctx, query, conv.ID,
		utils.FormatStorageTime(conv.CreatedAt),
		utils.FormatStorageTime(conv.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert conversation '%s': %w", conv.ID, err)
	}
	return nil
}

// Seed inserts n conversations spread over the days before now, one every
// few hours, each updated some minutes after creation.
func (m *ConversationModel) Seed(ctx context.Context, n int, now time.Time) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO conversations (id, created_at, updated_at) VALUES (?, ?, ?);`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		created := now.Add(-time.Duration(i) * 5 * time.Hour)
		updated := created.Add(time.Duration(i%7+1) * 11 * time.Minute)

		conv, err := New(created, updated)
		if err != nil {
			tx.Rollback()
			return err
		}

		if _, err := stmt.ExecContext(ctx, conv.ID,
			utils.FormatStorageTime(conv.CreatedAt),
			utils.FormatStorageTime(conv.UpdatedAt)); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (p ListParams) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	add := func(clause string, t time.Time) {
		if t.IsZero() {
			return
		}
		clauses = append(clauses, clause)
		args = append(args, utils.FormatStorageTime(t))
	}

	add("created_at >= ?", p.StartCreatedAt)
	add("created_at <= ?", p.EndCreatedAt)
	add("updated_at >= ?", p.StartUpdatedAt)
	add("updated_at <= ?", p.EndUpdatedAt)

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns one page, newest first. A page past the end is clamped to the
// last page.
func (m *ConversationModel) List(ctx context.Context, p ListParams) (*schema.ConversationsResponse, error) {
	if p.Page < 1 || !schema.ValidPageSize(p.PageSize) {
		return nil, fmt.Errorf("%w: page=%d page_size=%d", ErrInvalidPage, p.Page, p.PageSize)
	}

	where, args := p.where()

	var total int
	if err := m.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	totalPages := (total + p.PageSize - 1) / p.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := min(p.Page, totalPages)
	offset := (page - 1) * p.PageSize

	query := `
		SELECT id, created_at, updated_at
		FROM conversations` + where + `
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?
	`

	rows, err := m.DB.QueryContext(ctx, query, append(args, p.PageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	items := make([]schema.Conversation, 0, p.PageSize)
	for rows.Next() {
		var (
			conv                 schema.Conversation
			createdAt, updatedAt string
		)

		if err := rows.Scan(&conv.ID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		if conv.CreatedAt, err = utils.ParseTimeWithFallback(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse conversation created_at: %w", err)
		}
		if conv.UpdatedAt, err = utils.ParseTimeWithFallback(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse conversation updated_at: %w", err)
		}

		items = append(items, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &schema.ConversationsResponse{
		Items:           items,
		TotalItems:      total,
		StartIndex:      offset,
		EndIndex:        offset + len(items),
		TotalPages:      totalPages,
		CurrentPage:     page,
		CurrentPageSize: p.PageSize,
	}, nil
}
