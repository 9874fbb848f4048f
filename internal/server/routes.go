package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	memoryverse "github.com/Wryz/bible-modules/internal/memory_verse"
	"github.com/Wryz/bible-modules/pkg/response"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log.Named("http")))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Get home route
	r.Get("/", s.ServerIsWorking)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/bible-verses/v1", func(r chi.Router) {
		handler := memoryverse.NewMemoryVerseHandler(s.mvService)
		s.loadScriptureRoutes(r, &handler)
		s.loadVerseRoutes(r, &handler)
	})
	r.Get("/bible-verses/v1", s.ServerIsWorking)

	return r
}

func (s *Server) ServerIsWorking(w http.ResponseWriter, r *http.Request) {
	resp := make(map[string]string)
	resp["message"] = "Welcome to the bible verses api"
	response.Success(w, r, resp, "Success")
}

func (s *Server) loadScriptureRoutes(router chi.Router, h *memoryverse.MemoryVerseHandler) {
	router.Get("/scripture/books", h.GetBooksHandler)
	router.Get("/scripture/books/{book}/chapters", h.GetChaptersHandler)
	router.Get("/scripture/books/{book}/chapters/{chapter}", h.GetChapterHandler)
	router.Get("/scripture/verse", h.GetVerseHandler)
	router.Get("/scripture/search", h.SearchHandler)
	router.Get("/scripture/expand", h.ExpandHandler)
	router.Get("/scripture/neighbours", h.NeighboursHandler)
}

func (s *Server) loadVerseRoutes(router chi.Router, h *memoryverse.MemoryVerseHandler) {
	router.Get("/verses/current", h.GetCurrentVerseHandler)
	router.Post("/verses/foreground", h.ForegroundHandler)
	router.Post("/verses/promote", h.PromoteHandler)
	router.Get("/verses/history", h.GetHistoryHandler)

	router.Get("/schedule", h.GetScheduleHandler)
	router.Post("/schedule", h.ScheduleVerseHandler)
	router.Get("/schedule/next", h.GetNextDueHandler)
	router.Post("/schedule/populate", h.PopulateHandler)
	router.Delete("/schedule/{id}", h.CancelHandler)

	router.Get("/settings/widget", h.GetSettingsHandler)
	router.Put("/settings/widget", h.UpdateSettingsHandler)
	router.Get("/settings/appearance", h.GetAppearanceHandler)
	router.Put("/settings/appearance", h.UpdateAppearanceHandler)

	router.Get("/collections", h.GetCollectionsHandler)
	router.Post("/collections", h.SaveCollectionHandler)
	router.Delete("/collections/{id}", h.DeleteCollectionHandler)
	router.Post("/collections/{id}/schedule", h.ScheduleCollectionHandler)
}
