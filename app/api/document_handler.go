package api

import (
	"io"
	"os"
	"path/filepath"

	"docchat/app/session"
	"docchat/ingest"
	"docchat/model"
	"docchat/store"
	"docchat/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DocumentHandler covers ingestion: PDF upload, URL scraping, listing the
// owner's stored sources and switching the active document.
type DocumentHandler struct {
	store     store.DBStorer
	embedder  model.EmbedderInterface
	scraper   *ingest.Scraper
	sessions  *session.Manager
	uploadDir string
}

func NewDocumentHandler(dbStore store.DBStorer, embedder model.EmbedderInterface, scraper *ingest.Scraper, sessions *session.Manager, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		store:     dbStore,
		embedder:  embedder,
		scraper:   scraper,
		sessions:  sessions,
		uploadDir: uploadDir,
	}
}

// HandleUploadPDF extracts text from an uploaded PDF, embeds it and upserts
// the document under (owner, filename). The original bytes go both to the
// upload directory and the file_content column.
func (h *DocumentHandler) HandleUploadPDF(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Classify(KindExtraction, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Classify(KindExtraction, err)
	}

	text, err := ingest.ExtractText(data)
	if err != nil {
		return Classify(KindExtraction, err)
	}
	if text == "" {
		return c.JSON(types.IngestResponse{Stored: false, Message: "document contains no extractable text"})
	}

	path := filepath.Join(h.uploadDir, filepath.Base(fileHeader.Filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Classify(KindStorage, err)
	}

	id, err := h.storeDocument(c, sctx, fileHeader.Filename, text, data)
	if err != nil {
		return err
	}

	sctx.RememberUpload(fileHeader.Filename, path)
	if err := sctx.Save(); err != nil {
		return err
	}

	return c.JSON(types.IngestResponse{
		Stored:     true,
		DocumentID: id,
		Source:     fileHeader.Filename,
	})
}

// HandleIngestURL scrapes the paragraph text of a page and stores it under
// (owner, url). A page without paragraphs is reported, not stored.
func (h *DocumentHandler) HandleIngestURL(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}

	var params types.URLParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	text, err := h.scraper.Scrape(params.URL)
	if err != nil {
		return Classify(KindExtraction, err)
	}
	if text == "" {
		return c.JSON(types.IngestResponse{Stored: false, Message: "page contains no paragraph text"})
	}

	id, err := h.storeDocument(c, sctx, params.URL, text, nil)
	if err != nil {
		return err
	}
	if err := sctx.Save(); err != nil {
		return err
	}

	return c.JSON(types.IngestResponse{
		Stored:     true,
		DocumentID: id,
		Source:     params.URL,
	})
}

func (h *DocumentHandler) HandleListSources(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}

	sources, err := h.store.ListSources(c.Context(), sctx.Owner())
	if err != nil {
		return Classify(KindStorage, err)
	}
	if err := sctx.Save(); err != nil {
		return err
	}

	return c.JSON(types.SourcesResponse{
		Sources: sources,
		Current: sctx.CurrentDocument(),
	})
}

// HandleSelect switches the active document to one of the owner's stored
// sources.
func (h *DocumentHandler) HandleSelect(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}

	var params types.SelectParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	doc, err := h.store.GetDocumentBySource(c.Context(), sctx.Owner(), params.Source)
	if err != nil {
		return Classify(KindStorage, err)
	}

	sctx.SelectDocument(doc.Source)
	if err := sctx.Save(); err != nil {
		return err
	}

	return c.JSON(types.SourcesResponse{Current: doc.Source})
}

func (h *DocumentHandler) storeDocument(c *fiber.Ctx, sctx *session.Context, source, text string, fileContent []byte) (uuid.UUID, error) {
	embedding, err := h.embedder.Embed(text)
	if err != nil {
		return uuid.Nil, Classify(KindModel, err)
	}

	doc := types.Document{
		UserID:      sctx.Owner(),
		Source:      source,
		Content:     text,
		FileContent: fileContent,
		Embedding:   embedding,
	}

	docID, err := h.store.UpsertDocument(c.Context(), doc)
	if err != nil {
		return uuid.Nil, Classify(KindStorage, err)
	}

	sctx.SelectDocument(source)
	return docID, nil
}
