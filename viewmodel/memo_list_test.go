package viewmodel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"memo-app/database"
	"memo-app/models"
	"memo-app/services"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==================== MOCKS ====================

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) ListMemos(ctx context.Context) ([]models.Memo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Memo), args.Error(1)
}

func (m *MockRepository) AddMemo(ctx context.Context, memo models.Memo) (models.Memo, error) {
	args := m.Called(ctx, memo)
	return args.Get(0).(models.Memo), args.Error(1)
}

func (m *MockRepository) UpdateMemo(ctx context.Context, memo models.Memo) (models.Memo, error) {
	args := m.Called(ctx, memo)
	return args.Get(0).(models.Memo), args.Error(1)
}

func (m *MockRepository) DeleteMemo(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) AddComment(ctx context.Context, memoID int64, comment models.MemoComment) (models.MemoComment, error) {
	args := m.Called(ctx, memoID, comment)
	return args.Get(0).(models.MemoComment), args.Error(1)
}

func (m *MockRepository) UpdateComment(ctx context.Context, comment models.MemoComment) (models.MemoComment, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(models.MemoComment), args.Error(1)
}

func (m *MockRepository) DeleteComment(ctx context.Context, memoID, id int64) error {
	args := m.Called(ctx, memoID, id)
	return args.Error(0)
}

func (m *MockRepository) ImportAll(ctx context.Context, records []models.MemoRecord) (models.ImportResult, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(models.ImportResult), args.Error(1)
}

// ==================== HELPERS ====================

var errStore = errors.New("store write failed")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memo(id int64, title string, comments ...models.MemoComment) models.Memo {
	if comments == nil {
		comments = []models.MemoComment{}
	}
	return models.Memo{
		MemoRecord: models.MemoRecord{ID: id, Title: title, Category: "x", Content: "c", Hashtags: []string{}},
		Comments:   comments,
	}
}

func comment(id, memoID int64) models.MemoComment {
	return models.MemoComment{ID: id, MemoID: memoID, Content: "note"}
}

func loadedList(t *testing.T, memos ...models.Memo) (*MemoList, *MockRepository) {
	t.Helper()
	repo := new(MockRepository)
	repo.On("ListMemos", mock.Anything).Return(memos, nil).Once()

	list := New(repo, testLogger())
	require.NoError(t, list.Load(context.Background()))
	return list, repo
}

func ids(memos []models.Memo) []int64 {
	out := make([]int64, 0, len(memos))
	for _, m := range memos {
		out = append(out, m.ID)
	}
	return out
}

// ==================== TESTS ====================

func TestMemoList_Load(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"), memo(2, "b"))

		assert.Equal(t, []int64{1, 2}, ids(list.Memos()))
		assert.Equal(t, 2, list.Len())
		repo.AssertExpectations(t)
	})

	t.Run("Failure keeps previous list", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		repo.On("ListMemos", mock.Anything).Return(nil, errStore).Once()

		err := list.Load(context.Background())

		assert.ErrorIs(t, err, errStore)
		assert.Equal(t, []int64{1}, ids(list.Memos()))
	})
}

func TestMemoList_AddMemo(t *testing.T) {
	t.Run("Prepends confirmed memo", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		draft := memo(0, "new")
		repo.On("AddMemo", mock.Anything, draft).Return(memo(2, "new"), nil).Once()

		saved, err := list.AddMemo(context.Background(), draft)

		require.NoError(t, err)
		assert.Equal(t, int64(2), saved.ID)
		assert.Equal(t, []int64{2, 1}, ids(list.Memos()))
	})

	t.Run("Failure leaves list unchanged", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		repo.On("AddMemo", mock.Anything, mock.Anything).Return(models.Memo{}, errStore).Once()

		_, err := list.AddMemo(context.Background(), memo(0, "new"))

		assert.ErrorIs(t, err, errStore)
		assert.Equal(t, []int64{1}, ids(list.Memos()))
	})

	t.Run("Result without id is not merged", func(t *testing.T) {
		list, repo := loadedList(t)
		repo.On("AddMemo", mock.Anything, mock.Anything).Return(memo(0, "new"), nil).Once()

		_, err := list.AddMemo(context.Background(), memo(0, "new"))

		assert.ErrorIs(t, err, ErrUnconfirmed)
		assert.Equal(t, 0, list.Len())
	})
}

func TestMemoList_EditMemo(t *testing.T) {
	t.Run("Replaces matching entry wholesale", func(t *testing.T) {
		list, repo := loadedList(t, memo(2, "b", comment(1, 2)), memo(1, "a"))
		edited := memo(2, "renamed")
		repo.On("UpdateMemo", mock.Anything, edited).Return(edited, nil).Once()

		_, err := list.EditMemo(context.Background(), edited)
		require.NoError(t, err)

		got, ok := list.Memo(2)
		require.True(t, ok)
		assert.Equal(t, "renamed", got.Title)
		assert.Empty(t, got.Comments)
		assert.Equal(t, []int64{2, 1}, ids(list.Memos()))
	})

	t.Run("Unknown id is prepended", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		edited := memo(9, "upsert")
		repo.On("UpdateMemo", mock.Anything, edited).Return(edited, nil).Once()

		_, err := list.EditMemo(context.Background(), edited)

		require.NoError(t, err)
		assert.Equal(t, []int64{9, 1}, ids(list.Memos()))
	})

	t.Run("Failure leaves list unchanged", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		repo.On("UpdateMemo", mock.Anything, mock.Anything).Return(models.Memo{}, errStore).Once()

		_, err := list.EditMemo(context.Background(), memo(1, "changed"))

		assert.Error(t, err)
		got, _ := list.Memo(1)
		assert.Equal(t, "a", got.Title)
	})
}

func TestMemoList_DeleteMemo(t *testing.T) {
	t.Run("Removes after store confirms", func(t *testing.T) {
		list, repo := loadedList(t, memo(2, "b"), memo(1, "a"))
		repo.On("DeleteMemo", mock.Anything, int64(2)).Return(nil).Once()

		require.NoError(t, list.DeleteMemo(context.Background(), 2))
		assert.Equal(t, []int64{1}, ids(list.Memos()))
	})

	t.Run("Failure keeps memo", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		repo.On("DeleteMemo", mock.Anything, int64(1)).Return(errStore).Once()

		assert.Error(t, list.DeleteMemo(context.Background(), 1))
		assert.Equal(t, 1, list.Len())
	})
}

func TestMemoList_Comments(t *testing.T) {
	t.Run("AddComment prepends to owning memo only", func(t *testing.T) {
		list, repo := loadedList(t, memo(2, "b", comment(1, 2)), memo(1, "a"))
		draft := models.MemoComment{Content: "note"}
		repo.On("AddComment", mock.Anything, int64(2), draft).Return(comment(5, 2), nil).Once()

		_, err := list.AddComment(context.Background(), 2, draft)
		require.NoError(t, err)

		got, _ := list.Memo(2)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, int64(5), got.Comments[0].ID)
		other, _ := list.Memo(1)
		assert.Empty(t, other.Comments)
	})

	t.Run("AddComment without id is not merged", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		repo.On("AddComment", mock.Anything, int64(1), mock.Anything).
			Return(models.MemoComment{MemoID: 1, Content: "note"}, nil).Once()

		_, err := list.AddComment(context.Background(), 1, models.MemoComment{Content: "note"})

		assert.ErrorIs(t, err, ErrUnconfirmed)
		got, _ := list.Memo(1)
		assert.Empty(t, got.Comments)
	})

	t.Run("AddComment failure leaves list unchanged", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		repo.On("AddComment", mock.Anything, int64(1), mock.Anything).Return(models.MemoComment{}, errStore).Once()

		_, err := list.AddComment(context.Background(), 1, models.MemoComment{Content: "note"})

		assert.Error(t, err)
		got, _ := list.Memo(1)
		assert.Empty(t, got.Comments)
	})

	t.Run("EditComment replaces by id", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a", comment(3, 1), comment(4, 1)))
		edited := models.MemoComment{ID: 4, MemoID: 1, Content: "edited"}
		repo.On("UpdateComment", mock.Anything, edited).Return(edited, nil).Once()

		_, err := list.EditComment(context.Background(), edited)
		require.NoError(t, err)

		got, _ := list.Memo(1)
		assert.Equal(t, "note", got.Comments[0].Content)
		assert.Equal(t, "edited", got.Comments[1].Content)
	})

	t.Run("EditComment leaves no copy under a previous memo", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a", comment(3, 1)), memo(2, "b"))
		edited := models.MemoComment{ID: 3, MemoID: 2, Content: "edited"}
		repo.On("UpdateComment", mock.Anything, edited).Return(edited, nil).Once()

		_, err := list.EditComment(context.Background(), edited)
		require.NoError(t, err)

		first, _ := list.Memo(1)
		assert.Empty(t, first.Comments)
		second, _ := list.Memo(2)
		require.Len(t, second.Comments, 1)
		assert.Equal(t, "edited", second.Comments[0].Content)
	})

	t.Run("EditComment rejected by store leaves list unchanged", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a", comment(3, 1)), memo(2, "b"))
		moved := models.MemoComment{ID: 3, MemoID: 2, Content: "moved"}
		repo.On("UpdateComment", mock.Anything, moved).Return(models.MemoComment{}, errStore).Once()

		_, err := list.EditComment(context.Background(), moved)
		assert.Error(t, err)

		first, _ := list.Memo(1)
		require.Len(t, first.Comments, 1)
		assert.Equal(t, "note", first.Comments[0].Content)
	})

	t.Run("DeleteComment removes by comment id", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a", comment(3, 1)), memo(2, "b"))
		repo.On("DeleteComment", mock.Anything, int64(2), int64(3)).Return(nil).Once()

		require.NoError(t, list.DeleteComment(context.Background(), 2, 3))

		first, _ := list.Memo(1)
		assert.Empty(t, first.Comments)
	})

	t.Run("DeleteComment removes after store confirms", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a", comment(3, 1), comment(4, 1)))
		repo.On("DeleteComment", mock.Anything, int64(1), int64(3)).Return(nil).Once()

		require.NoError(t, list.DeleteComment(context.Background(), 1, 3))

		got, _ := list.Memo(1)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, int64(4), got.Comments[0].ID)
	})

	t.Run("DeleteComment failure keeps comment", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a", comment(3, 1)))
		repo.On("DeleteComment", mock.Anything, int64(1), int64(3)).Return(errStore).Once()

		assert.Error(t, list.DeleteComment(context.Background(), 1, 3))

		got, _ := list.Memo(1)
		assert.Len(t, got.Comments, 1)
	})
}

func TestMemoList_Import(t *testing.T) {
	t.Run("Reloads after inserting", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		records := []models.MemoRecord{{ID: 7, Title: "imported"}}
		repo.On("ImportAll", mock.Anything, records).Return(models.ImportResult{Imported: 1}, nil).Once()
		repo.On("ListMemos", mock.Anything).Return([]models.Memo{memo(1, "a"), memo(7, "imported")}, nil).Once()

		result, err := list.Import(context.Background(), records)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, []int64{7, 1}, ids(list.View()))
		repo.AssertExpectations(t)
	})

	t.Run("Nothing imported skips reload", func(t *testing.T) {
		list, repo := loadedList(t, memo(1, "a"))
		records := []models.MemoRecord{{ID: 1, Title: "dup"}}
		repo.On("ImportAll", mock.Anything, records).Return(models.ImportResult{Skipped: 1}, nil).Once()

		result, err := list.Import(context.Background(), records)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		repo.AssertExpectations(t)
	})

	t.Run("Partial failure still reloads", func(t *testing.T) {
		list, repo := loadedList(t)
		repo.On("ImportAll", mock.Anything, mock.Anything).Return(models.ImportResult{Imported: 1}, errStore).Once()
		repo.On("ListMemos", mock.Anything).Return([]models.Memo{memo(3, "first")}, nil).Once()

		_, err := list.Import(context.Background(), []models.MemoRecord{{ID: 3}, {ID: 4}})

		assert.ErrorIs(t, err, errStore)
		assert.Equal(t, []int64{3}, ids(list.Memos()))
	})
}

func TestMemoList_View(t *testing.T) {
	list, _ := loadedList(t,
		memo(1, "a", comment(9, 1), comment(2, 1)),
		memo(3, "c"),
		memo(2, "b"),
	)

	view := list.View()

	assert.Equal(t, []int64{3, 2, 1}, ids(view))
	assert.Equal(t, int64(2), view[2].Comments[0].ID)
	assert.Equal(t, int64(9), view[2].Comments[1].ID)

	// View returns copies
	view[0].Title = "mutated"
	got, _ := list.Memo(3)
	assert.Equal(t, "c", got.Title)
}

func TestPageComments(t *testing.T) {
	var comments []models.MemoComment
	for i := int64(12); i >= 1; i-- {
		comments = append(comments, comment(i, 1))
	}

	page := PageComments(comments, 0)
	assert.Len(t, page.Comments, CommentPageSize)
	assert.Equal(t, int64(8), page.Comments[0].ID)
	assert.Equal(t, int64(12), page.Comments[4].ID)
	assert.True(t, page.HasMore)
	assert.Equal(t, 12, page.Total)

	page = PageComments(comments, 2*CommentPageSize)
	assert.Len(t, page.Comments, 10)
	assert.True(t, page.HasMore)

	page = PageComments(comments, 3*CommentPageSize)
	assert.Len(t, page.Comments, 12)
	assert.Equal(t, int64(1), page.Comments[0].ID)
	assert.False(t, page.HasMore)

	page = PageComments(nil, 5)
	assert.Empty(t, page.Comments)
	assert.False(t, page.HasMore)
}

// TestMemoList_WithStore drives the list against the real service and a
// temporary SQLite file.
func TestMemoList_WithStore(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "memos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	svc := services.NewMemoService(database.NewStore(db), testLogger(), services.Options{
		CascadeDelete: true,
		Timeout:       time.Second,
	})
	list := New(svc, testLogger())
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))

	first, err := list.AddMemo(ctx, memo(0, "first"))
	require.NoError(t, err)
	second, err := list.AddMemo(ctx, memo(0, "second"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	c, err := list.AddComment(ctx, first.ID, models.MemoComment{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, c.MemoID)

	require.NoError(t, list.DeleteMemo(ctx, second.ID))

	fresh := New(svc, testLogger())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, ids(list.View()), ids(fresh.View()))

	got, ok := fresh.Memo(first.ID)
	require.True(t, ok)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "hello", got.Comments[0].Content)
}
