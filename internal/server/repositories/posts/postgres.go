// Package posts provides PostgreSQL-backed storage for user posts.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

// PostgresRepository implements post storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts post and fills in its timestamps.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, author_id, title, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, post.ID, post.AuthorID, post.Title, post.Description).
		Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return post, nil
}

// GetByID returns common.ErrorNotFound when no post has the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, author_id, title, description, created_at, updated_at
		FROM posts WHERE id = $1`

	return r.getOne(ctx, query, id)
}

// Update applies the non-nil fields of patch and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	query := `
		UPDATE posts
		SET title = COALESCE($2, title), description = COALESCE($3, description), updated_at = now()
		WHERE id = $1
		RETURNING id, author_id, title, description, created_at, updated_at
	`
	return r.getOne(ctx, query, id, patch.Title, patch.Description)
}

// Delete returns common.ErrorNotFound when nothing was deleted.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT id, author_id, title, description, created_at, updated_at
		FROM posts ORDER BY created_at DESC`

	return r.list(ctx, query)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	query := `SELECT id, author_id, title, description, created_at, updated_at
		FROM posts WHERE author_id = $1 ORDER BY created_at DESC`

	return r.list(ctx, query, authorID)
}

func (r *PostgresRepository) ListFollowedBy(ctx context.Context, userID string) ([]*models.Post, error) {
	query := `SELECT p.id, p.author_id, p.title, p.description, p.created_at, p.updated_at
		FROM posts p
		JOIN follows f ON f.followee_id = p.author_id
		WHERE f.follower_id = $1
		ORDER BY p.created_at DESC`

	return r.list(ctx, query, userID)
}

// DeleteByAuthor removes every post written by authorID and reports how many went.
func (r *PostgresRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Post, error) {
	post := &models.Post{Comments: []models.Comment{}}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&post.ID, &post.AuthorID, &post.Title, &post.Description, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		item := &models.Post{Comments: []models.Comment{}}
		if err := rows.Scan(
			&item.ID, &item.AuthorID, &item.Title, &item.Description, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
