package viewmodel

import (
	"memo-app/models"
	"sort"
)

// CommentPageSize is how many more comments each "show more" reveals.
const CommentPageSize = 5

// CommentPage is the visible tail of a memo's comments.
type CommentPage struct {
	Comments []models.MemoComment `json:"comments"`
	Total    int                  `json:"total"`
	HasMore  bool                 `json:"hasMore"`
}

// View returns the list in display order: newest memo first, and within
// each memo the comments oldest first.
func (l *MemoList) View() []models.Memo {
	return Sorted(l.Memos())
}

// Sorted orders memos newest first and each memo's comments oldest first,
// in place, and returns the slice.
func Sorted(memos []models.Memo) []models.Memo {
	sort.SliceStable(memos, func(i, j int) bool {
		return memos[i].ID > memos[j].ID
	})
	for i := range memos {
		sortComments(memos[i].Comments)
	}
	return memos
}

// PageComments returns the newest visible comments in ascending id order.
// A non-positive visible shows one page.
func PageComments(comments []models.MemoComment, visible int) CommentPage {
	if visible <= 0 {
		visible = CommentPageSize
	}

	sorted := append(make([]models.MemoComment, 0, len(comments)), comments...)
	sortComments(sorted)

	start := len(sorted) - visible
	if start < 0 {
		start = 0
	}

	return CommentPage{
		Comments: sorted[start:],
		Total:    len(sorted),
		HasMore:  start > 0,
	}
}

func sortComments(comments []models.MemoComment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
}
