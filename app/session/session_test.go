package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerIsStableAcrossRequests(t *testing.T) {
	app := fiber.New()
	m := NewManager()

	var owners []uuid.UUID
	app.Get("/", func(c *fiber.Ctx) error {
		sctx, err := m.Load(c)
		if err != nil {
			return err
		}
		owners = append(owners, sctx.Owner())
		return sctx.Save()
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	require.NotEmpty(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", strings.Split(cookie, ";")[0])
	_, err = app.Test(req, -1)
	require.NoError(t, err)

	require.Len(t, owners, 2)
	assert.NotEqual(t, uuid.Nil, owners[0])
	assert.Equal(t, owners[0], owners[1])
}

func TestStateTransitions(t *testing.T) {
	app := fiber.New()
	m := NewManager()

	var states []State
	var noDocErr error
	app.Get("/", func(c *fiber.Ctx) error {
		sctx, err := m.Load(c)
		if err != nil {
			return err
		}

		states = append(states, sctx.State())
		noDocErr = sctx.BeginAnswer()

		sctx.SelectDocument("report.pdf")
		states = append(states, sctx.State())

		if err := sctx.BeginAnswer(); err != nil {
			return err
		}
		states = append(states, sctx.State())

		sctx.FinishAnswer()
		states = append(states, sctx.State())

		return sctx.Save()
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.ErrorIs(t, noDocErr, ErrNoDocumentSelected)
	assert.Equal(t, []State{
		StateNoDocument,
		StateDocumentSelected,
		StateAwaitingAnswer,
		StateDocumentSelected,
	}, states)
}

func TestUploadPathCache(t *testing.T) {
	app := fiber.New()
	m := NewManager()

	var gotPath, missingPath string
	app.Get("/", func(c *fiber.Ctx) error {
		sctx, err := m.Load(c)
		if err != nil {
			return err
		}
		sctx.RememberUpload("report.pdf", "/tmp/uploads/report.pdf")
		gotPath = sctx.UploadPath("report.pdf")
		missingPath = sctx.UploadPath("other.pdf")
		return sctx.Save()
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/uploads/report.pdf", gotPath)
	assert.Empty(t, missingPath)
}
