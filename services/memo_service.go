package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"memo-app/database"
	"memo-app/models"
	"time"
)

// DefaultTimeout bounds a single service operation when Options.Timeout is
// not set.
const DefaultTimeout = 5 * time.Second

type Options struct {
	// CascadeDelete removes a memo's comments together with the memo.
	CascadeDelete bool
	// Timeout bounds each store round trip.
	Timeout time.Duration
}

// MemoService handles memo and comment operations on top of the store,
// including the comment join and bulk export/import.
type MemoService struct {
	store   MemoStore
	logger  *slog.Logger
	cascade bool
	timeout time.Duration
	now     func() time.Time
}

// NewMemoService creates a new memo service
func NewMemoService(store MemoStore, logger *slog.Logger, opts Options) *MemoService {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MemoService{
		store:   store,
		logger:  logger,
		cascade: opts.CascadeDelete,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (ms *MemoService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, ms.timeout)
}

// fail logs err and converts it into an *Error.
func (ms *MemoService) fail(op string, err error, fallback Kind, attrs ...any) error {
	kind := classify(err, fallback)
	ms.logger.Error("memo operation failed", append([]any{"op", op, "kind", string(kind), "error", err}, attrs...)...)
	return &Error{Kind: kind, Op: op, Err: err}
}

func invalid(op string, err error) error {
	return &Error{Kind: KindInvalid, Op: op, Err: err}
}

// ==================== MEMOS ====================

// AddMemo stores a new memo and returns it with its assigned id. Comments on
// the input are not stored.
func (ms *MemoService) AddMemo(ctx context.Context, memo models.Memo) (models.Memo, error) {
	const op = "addMemo"
	if memo.ID != 0 {
		return models.Memo{}, invalid(op, ErrAlreadyStored)
	}

	record := memo.MemoRecord
	now := ms.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if record.UpdatedAt.Before(record.CreatedAt) {
		return models.Memo{}, invalid(op, ErrBadTimestamps)
	}
	if record.Hashtags == nil {
		record.Hashtags = []string{}
	}

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	id, err := ms.store.InsertMemo(ctx, &record)
	if err != nil {
		return models.Memo{}, ms.fail(op, err, KindWriteFailed)
	}
	record.ID = id

	ms.logger.Debug("memo added", "memo_id", id)
	return models.Memo{MemoRecord: record, Comments: []models.MemoComment{}}, nil
}

// UpdateMemo replaces the stored memo with the same id and refreshes
// updatedAt. The comments carried by memo are passed through unchanged.
func (ms *MemoService) UpdateMemo(ctx context.Context, memo models.Memo) (models.Memo, error) {
	const op = "updateMemo"
	if memo.ID <= 0 {
		return models.Memo{}, invalid(op, ErrMissingID)
	}

	record := memo.MemoRecord
	if record.CreatedAt.IsZero() {
		record.CreatedAt = ms.now()
	}
	record.UpdatedAt = ms.now()
	if record.UpdatedAt.Before(record.CreatedAt) {
		record.UpdatedAt = record.CreatedAt
	}
	if record.Hashtags == nil {
		record.Hashtags = []string{}
	}

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	if err := ms.store.PutMemo(ctx, &record); err != nil {
		return models.Memo{}, ms.fail(op, err, KindWriteFailed, "memo_id", memo.ID)
	}

	comments := memo.Comments
	if comments == nil {
		comments = []models.MemoComment{}
	}
	return models.Memo{MemoRecord: record, Comments: comments}, nil
}

// DeleteMemo removes a memo. With cascade enabled its comments go too.
// Deleting a memo that does not exist succeeds.
func (ms *MemoService) DeleteMemo(ctx context.Context, id int64) error {
	const op = "deleteMemo"

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	var err error
	if ms.cascade {
		err = ms.store.DeleteMemoCascade(ctx, id)
	} else {
		err = ms.store.DeleteMemo(ctx, id)
	}
	if err != nil {
		return ms.fail(op, err, KindWriteFailed, "memo_id", id)
	}
	return nil
}

// GetMemo returns one memo with its comments.
func (ms *MemoService) GetMemo(ctx context.Context, id int64) (models.Memo, error) {
	const op = "getMemo"

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	record, err := ms.store.GetMemo(ctx, id)
	if err != nil {
		return models.Memo{}, ms.fail(op, err, KindReadFailed, "memo_id", id)
	}
	if record == nil {
		return models.Memo{}, &Error{Kind: KindNotFound, Op: op, Err: ErrMemoNotFound}
	}

	comments, err := ms.store.CommentsByMemo(ctx, id)
	if err != nil {
		return models.Memo{}, ms.fail(op, err, KindReadFailed, "memo_id", id)
	}
	return models.Memo{MemoRecord: *record, Comments: comments}, nil
}

// ListMemos reads all memos and all comments and attaches each comment to
// the memo it references. Comments keep store order; orphans are dropped.
func (ms *MemoService) ListMemos(ctx context.Context) ([]models.Memo, error) {
	const op = "listMemos"

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	records, err := ms.store.GetAllMemos(ctx)
	if err != nil {
		return nil, ms.fail(op, err, KindReadFailed)
	}
	comments, err := ms.store.GetAllComments(ctx)
	if err != nil {
		return nil, ms.fail(op, err, KindReadFailed)
	}

	return join(records, comments), nil
}

// FindMemos lists the memos whose indexed field equals value, with comments.
func (ms *MemoService) FindMemos(ctx context.Context, index database.MemoIndex, value string) ([]models.Memo, error) {
	const op = "findMemos"

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	records, err := ms.store.FindMemos(ctx, index, value)
	if err != nil {
		return nil, ms.fail(op, err, KindReadFailed, "index", string(index))
	}

	memos := make([]models.Memo, 0, len(records))
	for _, record := range records {
		comments, err := ms.store.CommentsByMemo(ctx, record.ID)
		if err != nil {
			return nil, ms.fail(op, err, KindReadFailed, "memo_id", record.ID)
		}
		memos = append(memos, models.Memo{MemoRecord: record, Comments: comments})
	}
	return memos, nil
}

func join(records []models.MemoRecord, comments []models.MemoComment) []models.Memo {
	byMemo := make(map[int64][]models.MemoComment, len(records))
	for _, c := range comments {
		byMemo[c.MemoID] = append(byMemo[c.MemoID], c)
	}

	memos := make([]models.Memo, 0, len(records))
	for _, record := range records {
		attached := byMemo[record.ID]
		if attached == nil {
			attached = []models.MemoComment{}
		}
		memos = append(memos, models.Memo{MemoRecord: record, Comments: attached})
	}
	return memos
}

// ==================== COMMENTS ====================

// AddComment stores a comment on memoID and returns it with its assigned id.
// The memo must exist.
func (ms *MemoService) AddComment(ctx context.Context, memoID int64, comment models.MemoComment) (models.MemoComment, error) {
	const op = "addComment"
	if memoID <= 0 {
		return models.MemoComment{}, invalid(op, ErrMissingID)
	}
	if comment.ID != 0 {
		return models.MemoComment{}, invalid(op, ErrAlreadyStored)
	}

	comment.MemoID = memoID
	now := ms.now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	if comment.UpdatedAt.IsZero() {
		comment.UpdatedAt = comment.CreatedAt
	}
	if comment.UpdatedAt.Before(comment.CreatedAt) {
		return models.MemoComment{}, invalid(op, ErrBadTimestamps)
	}

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	id, err := ms.store.InsertComment(ctx, &comment)
	if err != nil {
		return models.MemoComment{}, ms.fail(op, err, KindWriteFailed, "memo_id", memoID)
	}
	comment.ID = id

	ms.logger.Debug("comment added", "memo_id", memoID, "comment_id", id)
	return comment, nil
}

// UpdateComment persists an edited comment and returns the stored version.
func (ms *MemoService) UpdateComment(ctx context.Context, comment models.MemoComment) (models.MemoComment, error) {
	const op = "updateComment"
	if comment.ID <= 0 || comment.MemoID <= 0 {
		return models.MemoComment{}, invalid(op, ErrMissingID)
	}

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	existing, err := ms.store.GetComment(ctx, comment.ID)
	if err != nil {
		return models.MemoComment{}, ms.fail(op, err, KindReadFailed, "comment_id", comment.ID)
	}
	if existing == nil || existing.MemoID != comment.MemoID {
		return models.MemoComment{}, &Error{Kind: KindNotFound, Op: op, Err: ErrCommentNotFound}
	}
	comment.MemoID = existing.MemoID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = existing.CreatedAt
	}

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = ms.now()
	}
	comment.UpdatedAt = ms.now()
	if comment.UpdatedAt.Before(comment.CreatedAt) {
		comment.UpdatedAt = comment.CreatedAt
	}

	if err := ms.store.PutComment(ctx, &comment); err != nil {
		return models.MemoComment{}, ms.fail(op, err, KindWriteFailed, "comment_id", comment.ID)
	}
	return comment, nil
}

// DeleteComment removes comment id from memoID. Deleting a missing comment
// succeeds; a comment that belongs to another memo is NotFound.
func (ms *MemoService) DeleteComment(ctx context.Context, memoID, id int64) error {
	const op = "deleteComment"

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	existing, err := ms.store.GetComment(ctx, id)
	if err != nil {
		return ms.fail(op, err, KindReadFailed, "comment_id", id)
	}
	if existing == nil {
		return nil
	}
	if existing.MemoID != memoID {
		return &Error{Kind: KindNotFound, Op: op, Err: ErrCommentNotFound}
	}

	if err := ms.store.DeleteComment(ctx, id); err != nil {
		return ms.fail(op, err, KindWriteFailed, "comment_id", id)
	}
	return nil
}

// ==================== EXPORT / IMPORT ====================

// ExportAll returns every memo, without comments, as a pretty-printed JSON
// array. An empty store exports as [].
func (ms *MemoService) ExportAll(ctx context.Context) ([]byte, error) {
	const op = "exportAll"

	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	records, err := ms.store.GetAllMemos(ctx)
	if err != nil {
		return nil, ms.fail(op, err, KindReadFailed)
	}
	if records == nil {
		records = []models.MemoRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, ms.fail(op, err, KindReadFailed)
	}
	return data, nil
}

// ParseImport decodes an import document. Anything other than a JSON array
// of memo records is rejected as a whole.
func ParseImport(data []byte) ([]models.MemoRecord, error) {
	const op = "importAll"

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &Error{Kind: KindMalformedImport, Op: op, Err: ErrMalformedImport}
	}

	var records []models.MemoRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &Error{Kind: KindMalformedImport, Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedImport, err)}
	}
	return records, nil
}

// ImportAll inserts every record whose id is not already stored. Existing
// records are never overwritten, so importing the same document twice
// changes nothing the second time. Records without an id are skipped.
func (ms *MemoService) ImportAll(ctx context.Context, records []models.MemoRecord) (models.ImportResult, error) {
	const op = "importAll"
	var result models.ImportResult

	for _, record := range records {
		if err := ms.importOne(ctx, record, &result); err != nil {
			ms.logger.Warn("import stopped", "imported", result.Imported, "skipped", result.Skipped)
			return result, ms.fail(op, err, KindWriteFailed, "memo_id", record.ID)
		}
	}

	ms.logger.Info("import finished", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func (ms *MemoService) importOne(ctx context.Context, record models.MemoRecord, result *models.ImportResult) error {
	ctx, cancel := ms.withTimeout(ctx)
	defer cancel()

	if record.ID <= 0 {
		result.Skipped++
		return nil
	}

	existing, err := ms.store.GetMemo(ctx, record.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		result.Skipped++
		return nil
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = ms.now()
	}
	if record.UpdatedAt.Before(record.CreatedAt) {
		record.UpdatedAt = record.CreatedAt
	}
	if record.Hashtags == nil {
		record.Hashtags = []string{}
	}

	if _, err := ms.store.InsertMemo(ctx, &record); err != nil {
		return err
	}
	result.Imported++
	return nil
}
