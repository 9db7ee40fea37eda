package ingest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultScrapeTimeout = 10 * time.Second

// Scraper fetches a web page and extracts the text of its paragraph
// elements, the same content a reader would consider the article body.
type Scraper struct {
	client *http.Client
}

func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultScrapeTimeout
	}
	return &Scraper{
		client: &http.Client{Timeout: timeout},
	}
}

// Scrape returns the text of all <p> elements joined with single spaces.
// A page without paragraphs yields "" with no error; the caller skips
// the store write in that case.
func (s *Scraper) Scrape(url string) (string, error) {
	resp, err := s.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching URL", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		parts = append(parts, sel.Text())
	})

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}
