package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/fetcher"
)

const (
	// At most this many items are rendered into the prompt, regardless of
	// how many were fetched.
	maxPromptItems = 20

	maxHighlights      = 5
	fallbackHighlights = 3
	descriptionCut     = 200
)

// EmptyMessage is served when a category has no news to summarize.
const EmptyMessage = "Tidak ada berita tersedia untuk kategori ini."

const systemInstruction = "Anda adalah asisten berita profesional yang merangkum berita dalam Bahasa Indonesia dengan gaya objektif dan informatif."

var categoryNames = map[string]string{
	"hukum_politik": "Hukum & Politik",
	"ekonomi":       "Ekonomi",
	"pendidikan":    "Pendidikan",
	"kesehatan":     "Kesehatan",
	"teknologi":     "Teknologi",
	"nasional":      "Nasional",
}

// CategorySummary is the generated summary record for one category. Summary
// is never empty: it carries either model output or a readable fallback.
type CategorySummary struct {
	Category    string    `json:"category"`
	Summary     string    `json:"summary"`
	Highlights  []string  `json:"highlights"`
	NewsCount   int       `json:"news_count"`
	GeneratedAt time.Time `json:"generated_at"`
	Model       string    `json:"model,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// TextGenerator produces text for a prompt. Satisfied by the Gemini client.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Summarizer renders fetched news into a prompt and asks the model for a
// natural-language category summary.
type Summarizer struct {
	gen             TextGenerator
	timeout         time.Duration
	maxSummaryWords int
}

func New(gen TextGenerator, timeout time.Duration, maxSummaryWords int) *Summarizer {
	return &Summarizer{
		gen:             gen,
		timeout:         timeout,
		maxSummaryWords: maxSummaryWords,
	}
}

// Summarize generates a summary for the category's news items. It always
// returns a structurally valid record: model failures are folded into the
// Summary and Error fields. Highlights are computed locally and do not
// depend on the model call. Exactly one generation request is made, with no
// retry; an empty item list short-circuits before any model call.
func (s *Summarizer) Summarize(ctx context.Context, category string, items []fetcher.NewsItem) CategorySummary {
	if len(items) == 0 {
		return CategorySummary{
			Category:    category,
			Summary:     EmptyMessage,
			Highlights:  []string{},
			NewsCount:   0,
			GeneratedAt: time.Now(),
		}
	}

	prompt := s.buildPrompt(category, items)

	log.WithField("category", category).Debug("Requesting summary from model")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		log.WithFields(log.Fields{
			"category": category,
			"error":    err,
		}).Error("Model API call failed")
		return CategorySummary{
			Category:    category,
			Summary:     fmt.Sprintf("Error saat menghubungi AI API: %v", err),
			Highlights:  extractHighlights(items, maxHighlights),
			NewsCount:   len(items),
			GeneratedAt: time.Now(),
			Error:       err.Error(),
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		err := fmt.Errorf("model returned no usable candidates")
		log.WithField("category", category).Error("Empty model response")
		return CategorySummary{
			Category:    category,
			Summary:     fmt.Sprintf("Error generating summary: %v", err),
			Highlights:  extractHighlights(items, fallbackHighlights),
			NewsCount:   len(items),
			GeneratedAt: time.Now(),
			Error:       err.Error(),
		}
	}

	log.WithFields(log.Fields{
		"category": category,
		"chars":    len(text),
	}).Info("Summary generated")

	return CategorySummary{
		Category:    category,
		Summary:     text,
		Highlights:  extractHighlights(items, maxHighlights),
		NewsCount:   len(items),
		GeneratedAt: time.Now(),
		Model:       s.gen.Model(),
	}
}

// buildPrompt renders the items as a numbered plain-text block followed by
// the summarization task description.
func (s *Summarizer) buildPrompt(category string, items []fetcher.NewsItem) string {
	if len(items) > maxPromptItems {
		items = items[:maxPromptItems]
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
		if item.Description != "" {
			desc := item.Description
			if runes := []rune(desc); len(runes) > descriptionCut {
				desc = string(runes[:descriptionCut])
			}
			fmt.Fprintf(&b, "   %s...\n", desc)
		}
		fmt.Fprintf(&b, "   Sumber: %s\n\n", item.Source)
	}

	name := categoryNames[category]
	if name == "" {
		name = category
	}

	return fmt.Sprintf(`Berikut adalah kumpulan berita terkini kategori %s:

%s
Tugas Anda:
1. Buat rangkuman komprehensif dari berita-berita di atas dalam Bahasa Indonesia
2. Fokus pada tema utama, tren, dan poin penting
3. Maksimal %d kata
4. Gunakan format paragraf yang mudah dibaca
5. Objektif dan informatif
6. Jangan sebutkan sumber berita secara spesifik, fokus pada isi berita

Rangkuman:`, name, b.String(), s.maxSummaryWords)
}

func extractHighlights(items []fetcher.NewsItem, max int) []string {
	highlights := make([]string, 0, max)
	for _, item := range items {
		if len(highlights) >= max {
			break
		}
		if item.Title != "" {
			highlights = append(highlights, item.Title)
		}
	}
	return highlights
}
