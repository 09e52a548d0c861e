// Package viewmodel keeps the in-memory memo list consistent with the store.
//
// Every mutation goes through the Repository first; the list is only patched
// with what the repository confirmed, matched by id. A failed operation
// leaves the list untouched.
package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"memo-app/models"
	"sync"
)

// ErrUnconfirmed is returned when the repository reported success but did
// not hand back an id-bearing record.
var ErrUnconfirmed = errors.New("repository did not confirm an id")

// Repository is the set of operations the list needs from the memo service.
type Repository interface {
	ListMemos(ctx context.Context) ([]models.Memo, error)
	AddMemo(ctx context.Context, memo models.Memo) (models.Memo, error)
	UpdateMemo(ctx context.Context, memo models.Memo) (models.Memo, error)
	DeleteMemo(ctx context.Context, id int64) error
	AddComment(ctx context.Context, memoID int64, comment models.MemoComment) (models.MemoComment, error)
	UpdateComment(ctx context.Context, comment models.MemoComment) (models.MemoComment, error)
	DeleteComment(ctx context.Context, memoID, id int64) error
	ImportAll(ctx context.Context, records []models.MemoRecord) (models.ImportResult, error)
}

// MemoList is the in-memory list of memos with their comments.
type MemoList struct {
	repo   Repository
	logger *slog.Logger

	mu    sync.RWMutex
	memos []models.Memo
}

func New(repo Repository, logger *slog.Logger) *MemoList {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoList{
		repo:   repo,
		logger: logger,
		memos:  make([]models.Memo, 0),
	}
}

// Load replaces the list with a fresh read from the repository.
func (l *MemoList) Load(ctx context.Context) error {
	memos, err := l.repo.ListMemos(ctx)
	if err != nil {
		return err
	}

	fresh := make([]models.Memo, 0, len(memos))
	for _, m := range memos {
		fresh = append(fresh, normalize(m))
	}

	l.mu.Lock()
	l.memos = fresh
	l.mu.Unlock()

	l.logger.Debug("memo list loaded", "count", len(fresh))
	return nil
}

// Memos returns a copy of the list in its in-memory order.
func (l *MemoList) Memos() []models.Memo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Memo, 0, len(l.memos))
	for _, m := range l.memos {
		out = append(out, m.Clone())
	}
	return out
}

// Memo returns a copy of the memo with the given id.
func (l *MemoList) Memo(id int64) (models.Memo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(id); i >= 0 {
		return l.memos[i].Clone(), true
	}
	return models.Memo{}, false
}

// Len returns the number of memos in the list.
func (l *MemoList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.memos)
}

// ==================== MEMOS ====================

// AddMemo stores memo and prepends the confirmed record.
func (l *MemoList) AddMemo(ctx context.Context, memo models.Memo) (models.Memo, error) {
	saved, err := l.repo.AddMemo(ctx, memo)
	if err != nil {
		return models.Memo{}, err
	}
	if !saved.Persisted() {
		return models.Memo{}, ErrUnconfirmed
	}
	saved = normalize(saved)

	l.mu.Lock()
	l.memos = append([]models.Memo{saved.Clone()}, l.memos...)
	l.mu.Unlock()

	return saved, nil
}

// EditMemo stores memo and replaces the entry with the same id wholesale,
// comments included. A memo the list did not hold yet is prepended.
func (l *MemoList) EditMemo(ctx context.Context, memo models.Memo) (models.Memo, error) {
	saved, err := l.repo.UpdateMemo(ctx, memo)
	if err != nil {
		return models.Memo{}, err
	}
	if !saved.Persisted() {
		return models.Memo{}, ErrUnconfirmed
	}
	saved = normalize(saved)

	l.mu.Lock()
	if i := l.indexOf(saved.ID); i >= 0 {
		l.memos[i] = saved.Clone()
	} else {
		l.memos = append([]models.Memo{saved.Clone()}, l.memos...)
	}
	l.mu.Unlock()

	return saved, nil
}

// DeleteMemo removes the memo from the store, then from the list.
func (l *MemoList) DeleteMemo(ctx context.Context, id int64) error {
	if err := l.repo.DeleteMemo(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	if i := l.indexOf(id); i >= 0 {
		l.memos = append(l.memos[:i], l.memos[i+1:]...)
	}
	l.mu.Unlock()

	return nil
}

// ==================== COMMENTS ====================

// AddComment stores a comment on memoID and prepends it to that memo's
// comments. A comment without an assigned id is never merged.
func (l *MemoList) AddComment(ctx context.Context, memoID int64, comment models.MemoComment) (models.MemoComment, error) {
	saved, err := l.repo.AddComment(ctx, memoID, comment)
	if err != nil {
		return models.MemoComment{}, err
	}
	if !saved.Persisted() {
		l.logger.Warn("comment not merged without id", "memo_id", memoID)
		return models.MemoComment{}, ErrUnconfirmed
	}

	l.mu.Lock()
	if i := l.indexOf(saved.MemoID); i >= 0 {
		m := &l.memos[i]
		m.Comments = append([]models.MemoComment{saved}, m.Comments...)
	}
	l.mu.Unlock()

	return saved, nil
}

// EditComment persists the edit and replaces the comment in its memo.
func (l *MemoList) EditComment(ctx context.Context, comment models.MemoComment) (models.MemoComment, error) {
	saved, err := l.repo.UpdateComment(ctx, comment)
	if err != nil {
		return models.MemoComment{}, err
	}
	if !saved.Persisted() {
		return models.MemoComment{}, ErrUnconfirmed
	}

	l.mu.Lock()
	i := l.indexOf(saved.MemoID)
	if i < 0 || !replaceComment(l.memos[i].Comments, saved) {
		l.removeComment(saved.ID)
		if i >= 0 {
			m := &l.memos[i]
			m.Comments = append([]models.MemoComment{saved}, m.Comments...)
		}
	}
	l.mu.Unlock()

	return saved, nil
}

// DeleteComment removes the comment from the store and, once that is
// confirmed, from whichever memo holds it.
func (l *MemoList) DeleteComment(ctx context.Context, memoID, commentID int64) error {
	if err := l.repo.DeleteComment(ctx, memoID, commentID); err != nil {
		return err
	}

	l.mu.Lock()
	l.removeComment(commentID)
	l.mu.Unlock()

	return nil
}

// removeComment drops commentID from whichever memo holds it. Callers hold mu.
func (l *MemoList) removeComment(commentID int64) {
	for i := range l.memos {
		m := &l.memos[i]
		for j := range m.Comments {
			if m.Comments[j].ID == commentID {
				kept := make([]models.MemoComment, 0, len(m.Comments)-1)
				kept = append(kept, m.Comments[:j]...)
				m.Comments = append(kept, m.Comments[j+1:]...)
				return
			}
		}
	}
}

func replaceComment(comments []models.MemoComment, saved models.MemoComment) bool {
	for j := range comments {
		if comments[j].ID == saved.ID {
			comments[j] = saved
			return true
		}
	}
	return false
}

// ==================== IMPORT ====================

// Import hands records to the repository and reloads the list from the
// store, since imported records may or may not have been inserted.
func (l *MemoList) Import(ctx context.Context, records []models.MemoRecord) (models.ImportResult, error) {
	result, importErr := l.repo.ImportAll(ctx, records)
	if result.Imported == 0 && importErr == nil {
		return result, nil
	}

	if err := l.Load(ctx); err != nil {
		l.logger.Error("reload after import failed", "error", err)
		if importErr == nil {
			return result, err
		}
	}
	return result, importErr
}

func (l *MemoList) indexOf(id int64) int {
	for i := range l.memos {
		if l.memos[i].ID == id {
			return i
		}
	}
	return -1
}

func normalize(m models.Memo) models.Memo {
	if m.Comments == nil {
		m.Comments = []models.MemoComment{}
	}
	if m.Hashtags == nil {
		m.Hashtags = []string{}
	}
	return m
}
