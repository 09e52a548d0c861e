package handlers

import (
	"memo-app/app"
	"memo-app/models"
	"memo-app/viewmodel"

	"github.com/gofiber/fiber/v2"
)

// ListComments returns the latest comments of a memo, oldest first.
// ?visible grows in steps of the page size to show more.
func ListComments(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}

		memo, found := a.View.Memo(id)
		if !found {
			return notFound(c, "Memo not found")
		}

		page := viewmodel.PageComments(memo.Comments, c.QueryInt("visible", viewmodel.CommentPageSize))
		return success(c, fiber.Map{
			"comments": page.Comments,
			"total":    page.Total,
			"hasMore":  page.HasMore,
		})
	}
}

func CreateComment(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memoID, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}

		var req models.CommentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		saved, err := a.View.AddComment(c.UserContext(), memoID, models.MemoComment{Content: req.Content})
		if err != nil {
			return serviceError(c, a.Logger, "Failed to add comment", err)
		}

		return created(c, fiber.Map{"comment": saved})
	}
}

func UpdateComment(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memoID, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}
		commentID, ok := parseID(c, "commentId")
		if !ok {
			return badRequest(c, "Invalid comment id")
		}

		var req models.CommentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		comment := models.MemoComment{ID: commentID, MemoID: memoID, Content: req.Content}
		if memo, found := a.View.Memo(memoID); found {
			for _, existing := range memo.Comments {
				if existing.ID == commentID {
					comment.CreatedAt = existing.CreatedAt
					break
				}
			}
		}

		saved, err := a.View.EditComment(c.UserContext(), comment)
		if err != nil {
			return serviceError(c, a.Logger, "Failed to update comment", err)
		}

		return success(c, fiber.Map{"comment": saved})
	}
}

func DeleteComment(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memoID, ok := parseID(c, "id")
		if !ok {
			return badRequest(c, "Invalid memo id")
		}
		commentID, ok := parseID(c, "commentId")
		if !ok {
			return badRequest(c, "Invalid comment id")
		}

		if err := a.View.DeleteComment(c.UserContext(), memoID, commentID); err != nil {
			return serviceError(c, a.Logger, "Failed to delete comment", err)
		}

		return success(c, fiber.Map{"message": "Comment deleted successfully"})
	}
}
