package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/server"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/pkg/filter"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// productRequest is the JSON body for POST /products and PUT /products/{id}.
type productRequest struct {
	Name        string   `json:"name"`
	Metal       string   `json:"metal"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	WeightKg    float64  `json:"weight_kg"`
	HeightInch  float64  `json:"height_inch"`
	FinishType  string   `json:"finish_type"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
}

func (req *productRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	metal := models.MetalType(req.Metal)
	if !metal.Valid() {
		return fmt.Errorf("unknown metal %q", req.Metal)
	}
	category := models.CategoryType(req.Category)
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", req.Category)
	}
	if !models.CategoryValidFor(metal, category) {
		return fmt.Errorf("category %q is not made in %s", req.Category, req.Metal)
	}
	if !models.FinishType(req.FinishType).Valid() {
		return fmt.Errorf("unknown finish type %q", req.FinishType)
	}
	if req.Price < 0 || req.WeightKg < 0 || req.HeightInch < 0 {
		return errors.New("price, weight, and height must not be negative")
	}
	if req.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}

func (req *productRequest) apply(p *models.Product) {
	p.Name = req.Name
	p.Metal = models.MetalType(req.Metal)
	p.Category = models.CategoryType(req.Category)
	p.Price = req.Price
	p.WeightKg = req.WeightKg
	p.HeightInch = req.HeightInch
	p.FinishType = models.FinishType(req.FinishType)
	p.Stock = req.Stock
	p.Images = req.Images
	p.Description = req.Description
}

// productListResponse is the response for GET /products.
type productListResponse struct {
	Total    int              `json:"total"`
	Count    int              `json:"count"`
	Filters  string           `json:"filters,omitempty"`
	Products []models.Product `json:"products"`
}

// handleListProducts returns products matching the filter parameters in the
// query string. Unknown parameters and invalid values are ignored rather
// than rejected, so stale or hand-edited URLs still render a page.
func (m *Module) handleListProducts(w http.ResponseWriter, r *http.Request) {
	state := filter.DecodeQuery(r.URL.Query())

	matched, err := m.engine.Filter(r.Context(), state)
	if err != nil {
		m.logger.Error("filter products", zap.Error(err))
		server.InternalError(w, "failed to load products", r.URL.Path)
		return
	}

	total := len(matched)
	page := paginate(matched, r.URL.Query())

	writeJSON(w, http.StatusOK, productListResponse{
		Total:    total,
		Count:    len(page),
		Filters:  filter.EncodeQuery(state).Encode(),
		Products: page,
	})
}

// paginate slices products by the optional limit and offset parameters.
// These live outside the filter state: they never affect the cache key.
func paginate(products []models.Product, q map[string][]string) []models.Product {
	offset := intParam(q, "offset", 0)
	limit := intParam(q, "limit", len(products))

	if offset >= len(products) {
		return []models.Product{}
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end]
}

func intParam(q map[string][]string, name string, fallback int) int {
	vals, ok := q[name]
	if !ok || len(vals) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (m *Module) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := m.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("product %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get product", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load product", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (m *Module) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if err := req.validate(); err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	var p models.Product
	req.apply(&p)

	if err := m.products.Create(r.Context(), &p); err != nil {
		m.logger.Error("create product", zap.Error(err))
		server.InternalError(w, "failed to create product", r.URL.Path)
		return
	}
	m.engine.Invalidate()

	m.logger.Info("product created",
		zap.String("id", p.ID),
		zap.String("name", p.Name),
		zap.String("metal", string(p.Metal)),
	)
	writeJSON(w, http.StatusCreated, p)
}

func (m *Module) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if err := req.validate(); err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	p, err := m.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("product %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get product for update", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load product", r.URL.Path)
		return
	}

	req.apply(p)
	if err := m.products.Update(r.Context(), p); err != nil {
		m.logger.Error("update product", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to update product", r.URL.Path)
		return
	}
	m.engine.Invalidate()

	writeJSON(w, http.StatusOK, p)
}

func (m *Module) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := m.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("product %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("delete product", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete product", r.URL.Path)
		return
	}
	m.engine.Invalidate()

	w.WriteHeader(http.StatusNoContent)
}

// handleMetadata returns the filter options valid for the metal in the
// query string: available categories plus the static range hints.
func (m *Module) handleMetadata(w http.ResponseWriter, r *http.Request) {
	var metal *models.MetalType
	if raw := r.URL.Query().Get("metal"); raw != "" {
		mt := models.MetalType(raw)
		if !mt.Valid() {
			server.BadRequest(w, fmt.Sprintf("unknown metal %q", raw), r.URL.Path)
			return
		}
		metal = &mt
	}
	writeJSON(w, http.StatusOK, filter.MetadataFor(metal))
}

// categoriesResponse is the response for GET /categories.
type categoriesResponse struct {
	Metal      string                `json:"metal,omitempty"`
	Categories []models.CategoryType `json:"categories"`
}

// handleCategories returns the categories manufactured in a metal, or the
// full category list when no metal is given.
func (m *Module) handleCategories(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("metal")
	if raw == "" {
		writeJSON(w, http.StatusOK, categoriesResponse{Categories: models.CategoryTypes})
		return
	}

	mt := models.MetalType(raw)
	if !mt.Valid() {
		server.BadRequest(w, fmt.Sprintf("unknown metal %q", raw), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Metal:      raw,
		Categories: models.CategoriesFor(mt),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
