package handlers

import (
	"memo-app/app"
	"memo-app/database"
	"memo-app/models"
	"memo-app/viewmodel"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// memoView is a memo as rendered by the API, with its comments paged.
type memoView struct {
	models.Memo
	CommentsTotal   int  `json:"commentsTotal"`
	HasMoreComments bool `json:"hasMoreComments"`
}

func pageMemo(m models.Memo, visible int) memoView {
	page := viewmodel.PageComments(m.Comments, visible)
	m.Comments = page.Comments
	return memoView{Memo: m, CommentsTotal: page.Total, HasMoreComments: page.HasMore}
}

// Health reports liveness and the size of the in-memory list
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.Map{"status": "ok", "memos": a.View.Len()})
	}
}

// ListMemos returns memos newest first. category and title filter through
// the store's indexes, tag is a glob over hashtags; comments sets how many of
// the latest comments each memo shows.
func ListMemos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := strings.TrimSpace(c.Query("category"))
		title := strings.TrimSpace(c.Query("title"))
		visible := c.QueryInt("comments", viewmodel.CommentPageSize)

		var tagFilter *viewmodel.HashtagFilter
		if pattern := strings.TrimSpace(c.Query("tag")); pattern != "" {
			f, err := viewmodel.NewHashtagFilter(pattern)
			if err != nil {
				return badRequest(c, err.Error())
			}
			tagFilter = f
		}

		var memos []models.Memo
		switch {
		case category != "":
			found, err := a.Memos.FindMemos(c.UserContext(), database.IndexCategory, category)
			if err != nil {
				return serviceError(c, a.Logger, "Failed to fetch memos", err)
			}
			if title != "" {
				found = filterTitle(found, title)
			}
			memos = viewmodel.Sorted(found)
		case title != "":
			found, err := a.Memos.FindMemos(c.UserContext(), database.IndexTitle, title)
			if err != nil {
				return serviceError(c, a.Logger, "Failed to fetch memos", err)
			}
			memos = viewmodel.Sorted(found)
		default:
			memos = a.View.View()
		}
		if tagFilter != nil {
			memos = tagFilter.Apply(memos)
		}

		out := make([]memoView, 0, len(memos))
		for _, m := range memos {
			out = append(out, pageMemo(m, visible))
		}

		return success(c, fiber.Map{"memos": out, "count": len(out)})
	}
}

func filterTitle(memos []models.Memo, title string) []models.Memo {
	kept := memos[:0]
	for _, m := range memos {
		if m.Title == title {
			kept = append(kept, m)
		}
	}
	return kept
}

// GetMemo returns a single memo from the in-memory list
func GetMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}

		memo, found := a.View.Memo(id)
		if !found {
			return notFound(c, "Memo not found")
		}

		visible := c.QueryInt("comments", viewmodel.CommentPageSize)
		return success(c, fiber.Map{"memo": pageMemo(viewmodel.Sorted([]models.Memo{memo})[0], visible)})
	}
}

// CreateMemo stores a new memo and adds it to the list
func CreateMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateMemoRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		memo := models.Memo{MemoRecord: models.MemoRecord{
			Title:    req.Title,
			Category: req.Category,
			Content:  req.Content,
			Hashtags: req.Hashtags,
		}}

		saved, err := a.View.AddMemo(c.UserContext(), memo)
		if err != nil {
			return serviceError(c, a.Logger, "Failed to create memo", err)
		}

		return created(c, fiber.Map{"memo": saved})
	}
}

// UpdateMemo edits a memo's fields; its comments are kept
func UpdateMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}

		var req models.UpdateMemoRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		memo, found := a.View.Memo(id)
		if !found {
			memo = models.Memo{MemoRecord: models.MemoRecord{ID: id}}
		}
		memo.Title = req.Title
		memo.Category = req.Category
		memo.Content = req.Content
		memo.Hashtags = req.Hashtags

		saved, err := a.View.EditMemo(c.UserContext(), memo)
		if err != nil {
			return serviceError(c, a.Logger, "Failed to update memo", err)
		}

		return success(c, fiber.Map{"memo": saved})
	}
}

// DeleteMemo removes a memo. Deleting an unknown id succeeds.
func DeleteMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}

		if err := a.View.DeleteMemo(c.UserContext(), id); err != nil {
			return serviceError(c, a.Logger, "Failed to delete memo", err)
		}

		return success(c, fiber.Map{"message": "Memo deleted successfully"})
	}
}
