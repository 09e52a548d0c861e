package database

import (
	"context"
	"database/sql"
	"fmt"
	"memo-app/models"
)

// MemoIndex names a secondary index on the memos collection.
type MemoIndex string

const (
	IndexTitle     MemoIndex = "title"
	IndexCategory  MemoIndex = "category"
	IndexCreatedAt MemoIndex = "createdAt"
	IndexUpdatedAt MemoIndex = "updatedAt"
)

var memoIndexColumns = map[MemoIndex]string{
	IndexTitle:     "title",
	IndexCategory:  "category",
	IndexCreatedAt: "created_at",
	IndexUpdatedAt: "updated_at",
}

const memoColumns = `id, title, category, content, hashtags, created_at, updated_at`

// ==================== MEMO OPERATIONS ====================

// InsertMemo persists a new memo and returns its id. A zero id is assigned
// by the store; a non-zero id is kept as given.
func (s *Store) InsertMemo(ctx context.Context, memo *models.MemoRecord) (int64, error) {
	tags, err := encodeHashtags(memo.Hashtags)
	if err != nil {
		return 0, wrap("insert", collectionMemos, err)
	}

	var res sql.Result
	if memo.ID > 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO memos (id, title, category, content, hashtags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, memo.ID, memo.Title, memo.Category, memo.Content, tags,
			formatTime(memo.CreatedAt), formatTime(memo.UpdatedAt))
	} else {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO memos (title, category, content, hashtags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, memo.Title, memo.Category, memo.Content, tags,
			formatTime(memo.CreatedAt), formatTime(memo.UpdatedAt))
	}
	if err != nil {
		return 0, wrap("insert", collectionMemos, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("insert", collectionMemos, err)
	}
	return id, nil
}

// PutMemo replaces the memo with the same id, inserting it when absent.
func (s *Store) PutMemo(ctx context.Context, memo *models.MemoRecord) error {
	if memo.ID <= 0 {
		return wrap("put", collectionMemos, fmt.Errorf("memo has no id"))
	}

	tags, err := encodeHashtags(memo.Hashtags)
	if err != nil {
		return wrap("put", collectionMemos, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memos (id, title, category, content, hashtags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			content = excluded.content,
			hashtags = excluded.hashtags,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, memo.ID, memo.Title, memo.Category, memo.Content, tags,
		formatTime(memo.CreatedAt), formatTime(memo.UpdatedAt))
	return wrap("put", collectionMemos, err)
}

// DeleteMemo removes a memo. Deleting an absent id is not an error.
// Comments are left alone; see DeleteMemoCascade.
func (s *Store) DeleteMemo(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id)
	return wrap("delete", collectionMemos, err)
}

// DeleteMemoCascade removes a memo and every comment that references it in
// one transaction.
func (s *Store) DeleteMemoCascade(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("delete", collectionMemos, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE memo_id = ?`, id); err != nil {
		return wrap("delete", collectionComments, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id); err != nil {
		return wrap("delete", collectionMemos, err)
	}

	return wrap("delete", collectionMemos, tx.Commit())
}

// GetMemo returns the memo with the given id, or nil when there is none.
func (s *Store) GetMemo(ctx context.Context, id int64) (*models.MemoRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memoColumns+` FROM memos WHERE id = ?`, id)

	memo, err := scanMemo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get", collectionMemos, err)
	}
	return &memo, nil
}

// GetAllMemos returns every memo in id order.
func (s *Store) GetAllMemos(ctx context.Context) ([]models.MemoRecord, error) {
	return s.queryMemos(ctx, "getAll", `SELECT `+memoColumns+` FROM memos ORDER BY id ASC`)
}

// FindMemos returns the memos whose indexed field equals value.
func (s *Store) FindMemos(ctx context.Context, index MemoIndex, value string) ([]models.MemoRecord, error) {
	column, ok := memoIndexColumns[index]
	if !ok {
		return nil, wrap("query", collectionMemos, fmt.Errorf("%w: %q", ErrUnknownIndex, index))
	}

	query := fmt.Sprintf(`SELECT %s FROM memos WHERE %s = ? ORDER BY id ASC`, memoColumns, column)
	return s.queryMemos(ctx, "query", query, value)
}

func (s *Store) queryMemos(ctx context.Context, op, query string, args ...interface{}) ([]models.MemoRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, collectionMemos, err)
	}
	defer rows.Close()

	// Initialize with empty slice to avoid returning nil
	memos := make([]models.MemoRecord, 0)
	for rows.Next() {
		memo, err := scanMemo(rows)
		if err != nil {
			return nil, wrap(op, collectionMemos, err)
		}
		memos = append(memos, memo)
	}

	return memos, wrap(op, collectionMemos, rows.Err())
}

func scanMemo(row scanner) (models.MemoRecord, error) {
	var memo models.MemoRecord
	var tags, createdAt, updatedAt string

	if err := row.Scan(
		&memo.ID, &memo.Title, &memo.Category, &memo.Content,
		&tags, &createdAt, &updatedAt,
	); err != nil {
		return memo, err
	}

	var err error
	if memo.Hashtags, err = decodeHashtags(tags); err != nil {
		return memo, fmt.Errorf("decode hashtags of memo %d: %w", memo.ID, err)
	}
	if memo.CreatedAt, err = parseTime(createdAt); err != nil {
		return memo, fmt.Errorf("parse created_at of memo %d: %w", memo.ID, err)
	}
	if memo.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return memo, fmt.Errorf("parse updated_at of memo %d: %w", memo.ID, err)
	}

	return memo, nil
}
