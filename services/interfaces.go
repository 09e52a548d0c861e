package services

import (
	"context"
	"memo-app/database"
	"memo-app/models"
)

// MemoStore defines the persistent collections the service works on.
// Production uses *database.Store.
type MemoStore interface {
	InsertMemo(ctx context.Context, memo *models.MemoRecord) (int64, error)
	PutMemo(ctx context.Context, memo *models.MemoRecord) error
	DeleteMemo(ctx context.Context, id int64) error
	DeleteMemoCascade(ctx context.Context, id int64) error
	GetMemo(ctx context.Context, id int64) (*models.MemoRecord, error)
	GetAllMemos(ctx context.Context) ([]models.MemoRecord, error)
	FindMemos(ctx context.Context, index database.MemoIndex, value string) ([]models.MemoRecord, error)

	InsertComment(ctx context.Context, comment *models.MemoComment) (int64, error)
	PutComment(ctx context.Context, comment *models.MemoComment) error
	DeleteComment(ctx context.Context, id int64) error
	GetComment(ctx context.Context, id int64) (*models.MemoComment, error)
	GetAllComments(ctx context.Context) ([]models.MemoComment, error)
	CommentsByMemo(ctx context.Context, memoID int64) ([]models.MemoComment, error)
}

var _ MemoStore = (*database.Store)(nil)
