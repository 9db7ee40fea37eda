package api

import (
	"mime"
	"os"
	"path/filepath"

	"docchat/app/session"
	"docchat/store"

	"github.com/gofiber/fiber/v2"
)

// FileHandler serves the original uploaded file for a stored document:
// from the upload directory when it is still on disk, from the stored
// file bytes otherwise.
type FileHandler struct {
	store    store.DBStorer
	sessions *session.Manager
}

func NewFileHandler(dbStore store.DBStorer, sessions *session.Manager) *FileHandler {
	return &FileHandler{
		store:    dbStore,
		sessions: sessions,
	}
}

func (h *FileHandler) HandleDownload(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}

	source := c.Query("source")
	if source == "" {
		return ErrBadRequest()
	}
	if err := sctx.Save(); err != nil {
		return err
	}

	if path := sctx.UploadPath(source); path != "" {
		if _, err := os.Stat(path); err == nil {
			return c.Download(path, filepath.Base(path))
		}
	}

	doc, err := h.store.GetDocumentBySource(c.Context(), sctx.Owner(), source)
	if err != nil {
		return Classify(KindStorage, err)
	}
	if len(doc.FileContent) == 0 {
		return NewError(fiber.StatusNotFound, "file no longer exists")
	}

	c.Set(fiber.HeaderContentDisposition, attachmentHeader(source))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(doc.FileContent)
}

// attachmentHeader quotes the filename so source labels containing quotes
// or non-token characters cannot break the header.
func attachmentHeader(source string) string {
	return mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(source),
	})
}
