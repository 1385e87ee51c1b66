package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
	"github.com/MKhiriev/go-biz-sync/models"
)

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := models.Collection(chi.URLParam(r, "collection"))

	records, err := h.services.DocumentService.List(r.Context(), collection)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listDocuments").Str("collection", collection.String()).Msg("error listing documents")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}
	if records == nil {
		records = []models.Record{}
	}

	utils.WriteJSON(w, models.ListResponse{
		Collection: collection,
		Records:    records,
		Length:     len(records),
	}, http.StatusOK)
}

func (h *Handler) insertDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := models.Collection(chi.URLParam(r, "collection"))

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Str("func", "*Handler.insertDocument").Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	created, err := h.services.DocumentService.Insert(r.Context(), collection, record)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.insertDocument").
			Str("collection", collection.String()).
			Str("id", record.ID).
			Msg("error inserting document")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) mergeDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := models.Collection(chi.URLParam(r, "collection"))
	id := chi.URLParam(r, "id")

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Str("func", "*Handler.mergeDocument").Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if record.ID != "" && record.ID != id {
		utils.WriteError(w, ErrPathIDMismatch.Error(), http.StatusBadRequest)
		return
	}
	record.ID = id

	merged, err := h.services.DocumentService.Merge(r.Context(), collection, record)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.mergeDocument").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("error merging document")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, merged, http.StatusOK)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := models.Collection(chi.URLParam(r, "collection"))
	id := chi.URLParam(r, "id")

	if err := h.services.DocumentService.Delete(r.Context(), collection, id); err != nil {
		log.Err(err).
			Str("func", "*Handler.deleteDocument").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("error deleting document")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
