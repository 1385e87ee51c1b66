package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	router.Get("/api/version/", h.getServerVersion)

	// routes with authorization
	router.Group(func(r chi.Router) {
		r.Use(h.auth, h.withHashing)

		r.Get("/api/v1/collections/{collection}", h.listDocuments)
		r.Post("/api/v1/collections/{collection}", h.insertDocument)
		r.Patch("/api/v1/collections/{collection}/{id}", h.mergeDocument)
		r.Delete("/api/v1/collections/{collection}/{id}", h.deleteDocument)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
