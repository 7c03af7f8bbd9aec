package exports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/auth"
	"github.com/dhatukala/dhatukala/internal/server"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/pkg/filter"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// createCatalogueRequest is the JSON body for POST /.
type createCatalogueRequest struct {
	Name     string `json:"name"`
	Filters  string `json:"filters"`  // URL query form, e.g. "metal=Brass&price_max=5000"
	Password string `json:"password"` // Optional PDF password.
}

// handleCreateCatalogue filters the catalogue, renders the PDF, and
// records the export.
func (m *Module) handleCreateCatalogue(w http.ResponseWriter, r *http.Request) {
	var req createCatalogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if req.Name == "" {
		server.BadRequest(w, "name is required", r.URL.Path)
		return
	}

	values, err := url.ParseQuery(req.Filters)
	if err != nil {
		server.BadRequest(w, "filters must be a URL query string", r.URL.Path)
		return
	}
	state := filter.DecodeQuery(values)

	products, err := m.filterer.Filter(r.Context(), state)
	if err != nil {
		m.logger.Error("filter products for export", zap.Error(err))
		server.InternalError(w, "failed to select products", r.URL.Path)
		return
	}

	createdBy := ""
	if claims := auth.ClaimsFrom(r.Context()); claims != nil {
		createdBy = claims.Username
	}

	record := models.Catalogue{
		ID:           uuid.New().String(),
		Name:         req.Name,
		FilterQuery:  filter.EncodeQuery(state).Encode(),
		ProductCount: len(products),
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}
	record.FilePath = m.filePath(record.ID)

	if err := renderCatalogue(record.FilePath, products, renderOptions{
		Title:       req.Name,
		Password:    req.Password,
		GeneratedAt: record.CreatedAt,
	}); err != nil {
		m.logger.Error("render catalogue", zap.Error(err))
		server.InternalError(w, "failed to render catalogue", r.URL.Path)
		return
	}

	if err := m.catalogues.Create(r.Context(), &record); err != nil {
		// Remove the rendered file so nothing undiscoverable lingers on disk.
		_ = os.Remove(record.FilePath)
		m.logger.Error("record catalogue", zap.Error(err))
		server.InternalError(w, "failed to record catalogue", r.URL.Path)
		return
	}

	m.logger.Info("catalogue exported",
		zap.String("id", record.ID),
		zap.String("name", record.Name),
		zap.Int("products", record.ProductCount),
		zap.Bool("protected", req.Password != ""),
	)
	writeJSON(w, http.StatusCreated, record)
}

func (m *Module) handleListCatalogues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := services.ListOptions{SortOrder: q.Get("sort_order")}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	opts.Offset, _ = strconv.Atoi(q.Get("offset"))

	result, err := m.catalogues.List(r.Context(), opts)
	if err != nil {
		m.logger.Error("list catalogues", zap.Error(err))
		server.InternalError(w, "failed to list catalogues", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (m *Module) handleGetCatalogue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := m.catalogues.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("catalogue %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get catalogue", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load catalogue", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (m *Module) handleDownloadCatalogue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := m.catalogues.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("catalogue %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get catalogue for download", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load catalogue", r.URL.Path)
		return
	}

	if _, err := os.Stat(record.FilePath); err != nil {
		server.NotFound(w, fmt.Sprintf("catalogue %q has no rendered file", id), r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", record.Name+".pdf"))
	http.ServeFile(w, r, record.FilePath)
}

func (m *Module) handleDeleteCatalogue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := m.catalogues.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("catalogue %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get catalogue for delete", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load catalogue", r.URL.Path)
		return
	}

	if err := m.catalogues.Delete(r.Context(), id); err != nil {
		m.logger.Error("delete catalogue", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete catalogue", r.URL.Path)
		return
	}
	if record.FilePath != "" {
		if err := os.Remove(record.FilePath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("remove catalogue file",
				zap.String("path", record.FilePath), zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
