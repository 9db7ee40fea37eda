package session

import (
	"encoding/gob"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// State of the per-session document workflow.
type State string

const (
	StateNoDocument       State = "no_document"
	StateDocumentSelected State = "document_selected"
	StateAwaitingAnswer   State = "awaiting_answer"
)

var ErrNoDocumentSelected = errors.New("no document selected")

const (
	keyOwnerID  = "owner_id"
	keyDocument = "current_document"
	keyState    = "state"
	keyUploads  = "uploaded_files"
)

func init() {
	gob.Register(map[string]string{})
}

// Manager hands out per-browser-session contexts. The owner identity is a
// random UUID minted on first interaction, never an authenticated user.
type Manager struct {
	store *session.Store
}

func NewManager() *Manager {
	return &Manager{
		store: session.New(session.Config{
			CookieHTTPOnly: true,
		}),
	}
}

// Load resolves the session for the current request, creating the owner
// identity if this is the first interaction.
func (m *Manager) Load(c *fiber.Ctx) (*Context, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, err
	}

	sctx := &Context{sess: sess}
	if _, ok := sess.Get(keyOwnerID).(string); !ok {
		sess.Set(keyOwnerID, uuid.NewString())
		sess.Set(keyState, string(StateNoDocument))
	}
	return sctx, nil
}

// Context is the transient per-session state: owner id, currently selected
// document and the upload path cache. Discarded when the session ends,
// never persisted to the document store.
type Context struct {
	sess *session.Session
}

func (s *Context) Owner() uuid.UUID {
	raw, _ := s.sess.Get(keyOwnerID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (s *Context) State() State {
	raw, ok := s.sess.Get(keyState).(string)
	if !ok {
		return StateNoDocument
	}
	return State(raw)
}

func (s *Context) CurrentDocument() string {
	doc, _ := s.sess.Get(keyDocument).(string)
	return doc
}

// SelectDocument makes source the active document, whether it was just
// ingested or picked from the stored list.
func (s *Context) SelectDocument(source string) {
	s.sess.Set(keyDocument, source)
	s.sess.Set(keyState, string(StateDocumentSelected))
}

// BeginAnswer transitions to AwaitingAnswer. Question submission without a
// selected document is rejected here rather than at the store.
func (s *Context) BeginAnswer() error {
	if s.CurrentDocument() == "" {
		return ErrNoDocumentSelected
	}
	s.sess.Set(keyState, string(StateAwaitingAnswer))
	return nil
}

// FinishAnswer returns to DocumentSelected on completion, success or not.
func (s *Context) FinishAnswer() {
	s.sess.Set(keyState, string(StateDocumentSelected))
}

// RememberUpload caches the on-disk path of an uploaded file so the
// original can be offered for download later.
func (s *Context) RememberUpload(source, path string) {
	uploads, ok := s.sess.Get(keyUploads).(map[string]string)
	if !ok {
		uploads = make(map[string]string)
	}
	uploads[source] = path
	s.sess.Set(keyUploads, uploads)
}

func (s *Context) UploadPath(source string) string {
	uploads, ok := s.sess.Get(keyUploads).(map[string]string)
	if !ok {
		return ""
	}
	return uploads[source]
}

func (s *Context) Save() error {
	return s.sess.Save()
}
