package web

import (
	"net/http"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/progress"
	"github.com/hollandm/pocketroom/internal/repo"
)

// Handlers contains HTTP route handlers for the web view.
type Handlers struct {
	repo     *repo.Repository
	tracker  *progress.Tracker
	renderer *Renderer
}

// HandleList handles GET /capsules: all capsules with progress summaries.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	capsules := h.repo.List()
	items := make([]ListItem, 0, len(capsules))
	for _, c := range capsules {
		rec := h.tracker.Get(c.ID)
		item := ListItem{
			ID:         c.ID,
			Title:      c.Title,
			Type:       c.Content.Type(),
			Items:      c.Content.Items(),
			KnownCards: len(rec.Known),
			BestScore:  rec.BestScore,
			UpdatedAt:  c.UpdatedAt,
		}
		if fc, ok := c.Content.(capsule.Flashcards); ok {
			item.TotalCards = len(fc.Cards)
		}
		items = append(items, item)
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Capsules",
			Version: h.renderer.version,
		},
		Items: items,
	})
}

// HandleDetail handles GET /capsules/{id}: one capsule with its content.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := h.repo.Get(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	rec := h.tracker.Get(c.ID)

	data := DetailPageData{
		PageData: PageData{
			Title:   c.Title,
			Version: h.renderer.version,
		},
		Capsule:    c,
		Type:       c.Content.Type(),
		KnownCards: len(rec.Known),
		BestScore:  rec.BestScore,
	}

	switch content := c.Content.(type) {
	case capsule.Notes:
		data.NotesHTML = renderMarkdown(content.Text)
	case capsule.Flashcards:
		data.TotalCards = len(content.Cards)
		for _, card := range content.Cards {
			data.Cards = append(data.Cards, CardView{
				Front: card.Front,
				Back:  card.Back,
				Known: rec.Knows(card.ID()),
			})
		}
	case capsule.Quiz:
		data.Questions = content.Questions
	}

	h.renderer.renderPage(w, "detail", data)
}
