package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"docchat/app/agent"
	"docchat/app/api"
	"docchat/app/middleware"
	"docchat/app/session"
	"docchat/ingest"
	"docchat/model"
	"docchat/store"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger

	pool  *store.PostgresStore
	llm   *agent.GeminiAgent
	fiber *fiber.App
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	if s.fiber != nil {
		if err := s.fiber.Shutdown(); err != nil {
			s.logger.Error("error shutting down fiber", "error", err.Error())
		}
	}
	if s.llm != nil {
		s.llm.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
		return
	}
	s.pool = pool

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
		return
	}

	llm, err := agent.NewGeminiAgent(ctx)
	if err != nil {
		log.Fatal("error to create LLM agent", err)
		return
	}
	s.llm = llm

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Fatal("error to create upload directory", err)
		return
	}

	scrapeTimeout := defaultTimeout("SCRAPE_TIMEOUT_SECONDS", 10)

	var (
		app             = fiber.New(config)
		sessions        = session.NewManager()
		embedder        = model.NewEmbedder()
		scraper         = ingest.NewScraper(scrapeTimeout)
		checkHandler    = api.NewCheckHandler()
		documentHandler = api.NewDocumentHandler(pool, embedder, scraper, sessions, uploadDir)
		chatHandler     = api.NewChatHandler(pool, llm, sessions)
		fileHandler     = api.NewFileHandler(pool, sessions)
		check           = app.Group("/check")
		apiv1           = app.Group("/api/v1")
	)
	s.fiber = app

	check.Get("/healthy", checkHandler.HandleHealthy)

	apiv1.Post("/documents/upload", documentHandler.HandleUploadPDF)
	apiv1.Post("/documents/url", documentHandler.HandleIngestURL)
	apiv1.Get("/documents", documentHandler.HandleListSources)
	apiv1.Post("/documents/select", documentHandler.HandleSelect)
	apiv1.Get("/documents/file", fileHandler.HandleDownload)
	apiv1.Post("/ask", chatHandler.HandleAsk)
	apiv1.Get("/history", chatHandler.HandleHistory)

	app.Use(middleware.ServeUI("./static/index.html"))

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}

func defaultTimeout(env string, fallback int) time.Duration {
	seconds, err := strconv.Atoi(os.Getenv(env))
	if err != nil || seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}
