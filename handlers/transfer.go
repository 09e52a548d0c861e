package handlers

import (
	"memo-app/app"
	"memo-app/backup"
	"memo-app/services"

	"github.com/gofiber/fiber/v2"
)

// ExportMemos downloads every memo as a JSON array
func ExportMemos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := a.Memos.ExportAll(c.UserContext())
		if err != nil {
			return serviceError(c, a.Logger, "Failed to export memos", err)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+backup.FileName+`"`)
		return c.Send(data)
	}
}

// ImportMemos reads a JSON array from the request body. Records whose id is
// already stored are skipped; the list is reloaded afterwards.
func ImportMemos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := services.ParseImport(c.Body())
		if err != nil {
			return serviceError(c, a.Logger, "Invalid import file", err)
		}

		result, err := a.View.Import(c.UserContext(), records)
		if err != nil {
			return serviceError(c, a.Logger, "Failed to import memos", err)
		}

		return success(c, fiber.Map{
			"imported": result.Imported,
			"skipped":  result.Skipped,
		})
	}
}

// ReloadMemos rebuilds the in-memory list from the store
func ReloadMemos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.View.Load(c.UserContext()); err != nil {
			return serviceError(c, a.Logger, "Failed to reload memos", err)
		}
		return success(c, fiber.Map{"count": a.View.Len()})
	}
}
