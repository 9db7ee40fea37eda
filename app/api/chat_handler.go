package api

import (
	"log/slog"
	"time"

	"docchat/app/agent"
	"docchat/app/session"
	"docchat/store"
	"docchat/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ChatHandler answers questions about the active document and serves the
// question/answer history.
type ChatHandler struct {
	store    store.DBStorer
	agent    agent.Answerer
	sessions *session.Manager
}

func NewChatHandler(dbStore store.DBStorer, answerer agent.Answerer, sessions *session.Manager) *ChatHandler {
	return &ChatHandler{
		store:    dbStore,
		agent:    answerer,
		sessions: sessions,
	}
}

// HandleAsk sends the full stored document text plus the question to the
// model and logs the exchange. On a model failure nothing is logged.
func (h *ChatHandler) HandleAsk(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}

	var params types.QuestionParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	if err := sctx.BeginAnswer(); err != nil {
		return ErrNoDocumentSelected()
	}
	defer func() {
		sctx.FinishAnswer()
		if err := sctx.Save(); err != nil {
			slog.Error("failed to save session after answer", "error", err)
		}
	}()

	doc, err := h.store.GetDocumentBySource(c.Context(), sctx.Owner(), sctx.CurrentDocument())
	if err != nil {
		return Classify(KindStorage, err)
	}

	answer, err := h.agent.Answer(c.Context(), doc.Content, params.Question)
	if err != nil {
		return Classify(KindModel, err)
	}

	entry := types.ChatEntry{
		UserID:       sctx.Owner(),
		DocumentID:   doc.ID,
		DocumentName: doc.Source,
		Question:     params.Question,
		Answer:       answer,
	}
	if err := h.store.AppendChat(c.Context(), entry); err != nil {
		return Classify(KindStorage, err)
	}

	return c.JSON(types.AnswerResponse{
		Answer:     answer,
		DocumentID: doc.ID,
		Timestamp:  time.Now(),
	})
}

// HandleHistory lists the owner's exchanges newest-first, filtered by the
// document named in the "document" query param when given. An unknown
// document filter yields an empty list, not an error.
func (h *ChatHandler) HandleHistory(c *fiber.Ctx) error {
	sctx, err := h.sessions.Load(c)
	if err != nil {
		return err
	}
	if err := sctx.Save(); err != nil {
		return err
	}

	var documentID *uuid.UUID
	if source := c.Query("document"); source != "" {
		doc, err := h.store.GetDocumentBySource(c.Context(), sctx.Owner(), source)
		if err != nil {
			return c.JSON([]types.ChatEntry{})
		}
		documentID = &doc.ID
	}

	entries, err := h.store.ListHistory(c.Context(), sctx.Owner(), documentID)
	if err != nil {
		return Classify(KindStorage, err)
	}
	if entries == nil {
		entries = []types.ChatEntry{}
	}
	return c.JSON(entries)
}
