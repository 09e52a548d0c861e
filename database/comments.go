package database

import (
	"context"
	"database/sql"
	"fmt"
	"memo-app/models"
)

const commentColumns = `id, memo_id, content, created_at, updated_at`

// ==================== COMMENT OPERATIONS ====================

// InsertComment persists a comment and returns its id. The referenced memo
// must exist; otherwise ErrMemoMissing is returned and nothing is written.
func (s *Store) InsertComment(ctx context.Context, comment *models.MemoComment) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("insert", collectionComments, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM memos WHERE id = ?`, comment.MemoID).Scan(&exists)
	if err == sql.ErrNoRows {
		return 0, wrap("insert", collectionComments, fmt.Errorf("%w: memo %d", ErrMemoMissing, comment.MemoID))
	}
	if err != nil {
		return 0, wrap("insert", collectionComments, err)
	}

	var res sql.Result
	if comment.ID > 0 {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO comments (id, memo_id, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, comment.ID, comment.MemoID, comment.Content,
			formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt))
	} else {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO comments (memo_id, content, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, comment.MemoID, comment.Content,
			formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt))
	}
	if err != nil {
		return 0, wrap("insert", collectionComments, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("insert", collectionComments, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("insert", collectionComments, err)
	}
	return id, nil
}

// PutComment replaces the comment with the same id, inserting it when absent.
func (s *Store) PutComment(ctx context.Context, comment *models.MemoComment) error {
	if comment.ID <= 0 {
		return wrap("put", collectionComments, fmt.Errorf("comment has no id"))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, memo_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			memo_id = excluded.memo_id,
			content = excluded.content,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, comment.ID, comment.MemoID, comment.Content,
		formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt))
	return wrap("put", collectionComments, err)
}

// DeleteComment removes a comment. Deleting an absent id is not an error.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return wrap("delete", collectionComments, err)
}

// DeleteCommentsByMemo removes every comment on memoID and returns how many
// were removed.
func (s *Store) DeleteCommentsByMemo(ctx context.Context, memoID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE memo_id = ?`, memoID)
	if err != nil {
		return 0, wrap("delete", collectionComments, err)
	}
	n, err := res.RowsAffected()
	return n, wrap("delete", collectionComments, err)
}

// GetComment returns the comment with the given id, or nil when there is none.
func (s *Store) GetComment(ctx context.Context, id int64) (*models.MemoComment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)

	comment, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get", collectionComments, err)
	}
	return &comment, nil
}

// GetAllComments returns every comment in id order, orphans included.
func (s *Store) GetAllComments(ctx context.Context) ([]models.MemoComment, error) {
	return s.queryComments(ctx, "getAll", `SELECT `+commentColumns+` FROM comments ORDER BY id ASC`)
}

// CommentsByMemo returns the comments of one memo through the memo_id index.
func (s *Store) CommentsByMemo(ctx context.Context, memoID int64) ([]models.MemoComment, error) {
	return s.queryComments(ctx, "query",
		`SELECT `+commentColumns+` FROM comments WHERE memo_id = ? ORDER BY id ASC`, memoID)
}

func (s *Store) queryComments(ctx context.Context, op, query string, args ...interface{}) ([]models.MemoComment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, collectionComments, err)
	}
	defer rows.Close()

	comments := make([]models.MemoComment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, wrap(op, collectionComments, err)
		}
		comments = append(comments, comment)
	}

	return comments, wrap(op, collectionComments, rows.Err())
}

func scanComment(row scanner) (models.MemoComment, error) {
	var comment models.MemoComment
	var createdAt, updatedAt string

	if err := row.Scan(
		&comment.ID, &comment.MemoID, &comment.Content, &createdAt, &updatedAt,
	); err != nil {
		return comment, err
	}

	var err error
	if comment.CreatedAt, err = parseTime(createdAt); err != nil {
		return comment, fmt.Errorf("parse created_at of comment %d: %w", comment.ID, err)
	}
	if comment.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return comment, fmt.Errorf("parse updated_at of comment %d: %w", comment.ID, err)
	}

	return comment, nil
}
