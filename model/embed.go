package model

import (
	"log/slog"
	"os"
)

// EmbedderInterface maps document text to a fixed-size vector.
// One call per document; the stored vector is not used by any
// retrieval path yet.
type EmbedderInterface interface {
	Embed(text string) ([]float32, error)
}

func NewEmbedder() EmbedderInterface {
	url := os.Getenv("OLLAMA_EMBEDDING_URL")
	model := os.Getenv("OLLAMA_EMBEDDING_MODEL")

	slog.Info("using local Ollama for embeddings", "model", model)

	return NewOllamaEmbedder(url, model)
}
