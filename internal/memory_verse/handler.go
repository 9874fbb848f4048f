package memoryverse

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/pkg/response"
)

type MemoryVerseHandler struct {
	service *MemoryVerseService
}

func NewMemoryVerseHandler(service *MemoryVerseService) MemoryVerseHandler {
	return MemoryVerseHandler{service: service}
}

// Scripture

func (h *MemoryVerseHandler) GetBooksHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.Index().AllBooks(), "successfully")
}

func (h *MemoryVerseHandler) GetChaptersHandler(w http.ResponseWriter, r *http.Request) {
	book := h.service.Index().FindBook(chi.URLParam(r, "book"))
	if book == nil {
		response.Error(w, r, http.StatusNotFound, "Book not found", chi.URLParam(r, "book"))
		return
	}
	response.Success(w, r, h.service.Index().Chapters(book.Name), "successfully")
}

func (h *MemoryVerseHandler) GetChapterHandler(w http.ResponseWriter, r *http.Request) {
	chapter, err := strconv.Atoi(chi.URLParam(r, "chapter"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "Invalid chapter", err.Error())
		return
	}

	verses := h.service.Index().VersesInChapter(chi.URLParam(r, "book"), chapter)
	if len(verses) == 0 {
		response.Error(w, r, http.StatusNotFound, "Chapter not found", map[string]string{
			"book":    chi.URLParam(r, "book"),
			"chapter": chi.URLParam(r, "chapter"),
		})
		return
	}
	response.Success(w, r, verses, "successfully")
}

func (h *MemoryVerseHandler) GetVerseHandler(w http.ResponseWriter, r *http.Request) {
	verse, ok := h.verseFromQuery(w, r)
	if !ok {
		return
	}
	response.Success(w, r, verse, "successfully")
}

func (h *MemoryVerseHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.Error(w, r, http.StatusBadRequest, "Missing required fields", map[string]string{
			"q": "q is required",
		})
		return
	}
	response.Success(w, r, h.service.Index().Search(query, r.URL.Query().Get("book")), "successfully")
}

func (h *MemoryVerseHandler) ExpandHandler(w http.ResponseWriter, r *http.Request) {
	verse, ok := h.verseFromQuery(w, r)
	if !ok {
		return
	}
	response.Success(w, r, h.service.Expander().Expand(verse), "successfully")
}

func (h *MemoryVerseHandler) NeighboursHandler(w http.ResponseWriter, r *http.Request) {
	verse, ok := h.verseFromQuery(w, r)
	if !ok {
		return
	}

	var previous, next *scripture.Verse
	if v, ok := h.service.Index().Previous(verse); ok {
		previous = &v
	}
	if v, ok := h.service.Index().Next(verse); ok {
		next = &v
	}
	response.Success(w, r, map[string]any{
		"verse":    verse,
		"previous": previous,
		"next":     next,
	}, "successfully")
}

func (h *MemoryVerseHandler) verseFromQuery(w http.ResponseWriter, r *http.Request) (scripture.Verse, bool) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		response.Error(w, r, http.StatusBadRequest, "Missing required fields", map[string]string{
			"ref": "ref is required",
		})
		return scripture.Verse{}, false
	}
	verse, ok := h.service.Index().ParseReference(ref)
	if !ok {
		response.Error(w, r, http.StatusNotFound, "Verse not found", ref)
		return scripture.Verse{}, false
	}
	return verse, true
}

// Current verse and history

func (h *MemoryVerseHandler) GetCurrentVerseHandler(w http.ResponseWriter, r *http.Request) {
	current := h.service.Current(r.Context())
	if current == nil {
		response.Success(w, r, nil, "no current verse")
		return
	}
	response.Success(w, r, current, "successfully")
}

func (h *MemoryVerseHandler) ForegroundHandler(w http.ResponseWriter, r *http.Request) {
	verse, err := h.service.OnAppForeground(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to refresh verse", err)
		return
	}
	if verse == nil {
		response.Success(w, r, nil, "nothing to show")
		return
	}
	response.Success(w, r, verse, "successfully")
}

func (h *MemoryVerseHandler) PromoteHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.PromoteNextDue(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to promote verse", err)
		return
	}
	if record == nil {
		response.Success(w, r, nil, "nothing due")
		return
	}
	response.Success(w, r, record, "successfully")
}

func (h *MemoryVerseHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.History(r.Context()), "successfully")
}

// Schedule

func (h *MemoryVerseHandler) GetScheduleHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.Pending(r.Context()), "successfully")
}

func (h *MemoryVerseHandler) ScheduleVerseHandler(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !response.Decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Reference) == "" {
		response.Error(w, r, http.StatusBadRequest, "Missing required fields", map[string]string{
			"reference": "reference is required",
		})
		return
	}

	reveal, err := h.service.ScheduleReference(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "Failed to schedule verse", err)
		return
	}
	response.Created(w, r, reveal, "scheduled")
}

func (h *MemoryVerseHandler) GetNextDueHandler(w http.ResponseWriter, r *http.Request) {
	next := h.service.NextDue(r.Context())
	if next == nil {
		response.Success(w, r, nil, "nothing scheduled")
		return
	}
	response.Success(w, r, next, "successfully")
}

func (h *MemoryVerseHandler) PopulateHandler(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(w, r, http.StatusBadRequest, "Invalid count", raw)
			return
		}
		count = n
	}

	scheduled, err := h.service.PopulateSchedule(r.Context(), count)
	if err != nil {
		writeServiceError(w, r, "Failed to populate schedule", err)
		return
	}
	response.Success(w, r, map[string]int{"scheduled": scheduled}, "successfully")
}

func (h *MemoryVerseHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "Failed to cancel verse", err)
		return
	}
	response.Success(w, r, "Ok", "successfully")
}

// Settings

func (h *MemoryVerseHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.Settings(r.Context()), "successfully")
}

func (h *MemoryVerseHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings WidgetSettings
	if !response.Decode(w, r, &settings) {
		return
	}

	scheduled, err := h.service.UpdateSettings(r.Context(), settings)
	if err != nil {
		writeServiceError(w, r, "Failed to update settings", err)
		return
	}
	response.Success(w, r, map[string]any{
		"settings":  settings,
		"scheduled": scheduled,
	}, "successfully")
}

func (h *MemoryVerseHandler) GetAppearanceHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.Appearance(r.Context()), "successfully")
}

func (h *MemoryVerseHandler) UpdateAppearanceHandler(w http.ResponseWriter, r *http.Request) {
	var appearance Appearance
	if !response.Decode(w, r, &appearance) {
		return
	}

	if err := h.service.UpdateAppearance(r.Context(), appearance); err != nil {
		writeServiceError(w, r, "Failed to update appearance", err)
		return
	}
	response.Success(w, r, appearance, "successfully")
}

// Collections

func (h *MemoryVerseHandler) GetCollectionsHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, h.service.Collections(r.Context()), "successfully")
}

func (h *MemoryVerseHandler) SaveCollectionHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveCollectionRequest
	if !response.Decode(w, r, &req) {
		return
	}

	collection, err := h.service.SaveCollection(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "Failed to save collection", err)
		return
	}
	response.Created(w, r, collection, "saved")
}

func (h *MemoryVerseHandler) DeleteCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCollection(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "Failed to delete collection", err)
		return
	}
	response.Success(w, r, "Ok", "successfully")
}

func (h *MemoryVerseHandler) ScheduleCollectionHandler(w http.ResponseWriter, r *http.Request) {
	var req ScheduleCollectionRequest
	if r.ContentLength != 0 {
		if !response.Decode(w, r, &req) {
			return
		}
	}
	if req.EveryHours < 0 {
		response.Error(w, r, http.StatusBadRequest, "Invalid everyHours", req.EveryHours)
		return
	}

	var start time.Time
	if req.Start != nil {
		start = *req.Start
	}

	reveals, err := h.service.ScheduleCollection(r.Context(), chi.URLParam(r, "id"), start, time.Duration(req.EveryHours)*time.Hour)
	if err != nil {
		writeServiceError(w, r, "Failed to schedule collection", err)
		return
	}
	response.Created(w, r, reveals, "scheduled")
}

func writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(w, r, http.StatusNotFound, message, err.Error())
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidSettings):
		response.Error(w, r, http.StatusBadRequest, message, err.Error())
	default:
		response.Error(w, r, http.StatusInternalServerError, message, err.Error())
	}
}
