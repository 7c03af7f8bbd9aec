package rates

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/server"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// rateRequest is the JSON body for POST / and PUT /{id}.
type rateRequest struct {
	Metal         string  `json:"metal"`
	RatePerUnit   float64 `json:"rate_per_unit"`
	Unit          string  `json:"unit"`
	EffectiveFrom string  `json:"effective_from,omitempty"` // RFC 3339; defaults to now
}

func (req *rateRequest) validate() (time.Time, error) {
	if !models.MetalType(req.Metal).Valid() {
		return time.Time{}, fmt.Errorf("unknown metal %q", req.Metal)
	}
	if req.RatePerUnit <= 0 {
		return time.Time{}, errors.New("rate_per_unit must be positive")
	}
	if req.Unit != "kg" && req.Unit != "gram" {
		return time.Time{}, fmt.Errorf("unit must be %q or %q", "kg", "gram")
	}
	if req.EffectiveFrom == "" {
		return time.Time{}, nil
	}
	from, err := time.Parse(time.RFC3339, req.EffectiveFrom)
	if err != nil {
		return time.Time{}, fmt.Errorf("effective_from must be RFC 3339: %v", err)
	}
	return from, nil
}

func (m *Module) handleListRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	metal := q.Get("metal")
	if metal != "" && !models.MetalType(metal).Valid() {
		server.BadRequest(w, fmt.Sprintf("unknown metal %q", metal), r.URL.Path)
		return
	}

	opts := services.ListOptions{SortOrder: q.Get("sort_order")}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	opts.Offset, _ = strconv.Atoi(q.Get("offset"))

	result, err := m.rates.List(r.Context(), metal, opts)
	if err != nil {
		m.logger.Error("list rates", zap.Error(err))
		server.InternalError(w, "failed to list rates", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleLatestRates returns the current rate per metal, the numbers the
// rate board displays.
func (m *Module) handleLatestRates(w http.ResponseWriter, r *http.Request) {
	rates, err := m.rates.LatestAll(r.Context())
	if err != nil {
		m.logger.Error("latest rates", zap.Error(err))
		server.InternalError(w, "failed to load latest rates", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (m *Module) handleGetRate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rate, err := m.rates.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("rate %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get rate", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load rate", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (m *Module) handleCreateRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	from, err := req.validate()
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	rate := models.MetalRate{
		Metal:         models.MetalType(req.Metal),
		RatePerUnit:   req.RatePerUnit,
		Unit:          req.Unit,
		EffectiveFrom: from,
	}
	if err := m.rates.Create(r.Context(), &rate); err != nil {
		m.logger.Error("create rate", zap.Error(err))
		server.InternalError(w, "failed to create rate", r.URL.Path)
		return
	}

	m.logger.Info("rate created",
		zap.String("metal", req.Metal),
		zap.Float64("rate_per_unit", req.RatePerUnit),
		zap.String("unit", req.Unit),
	)
	writeJSON(w, http.StatusCreated, rate)
}

func (m *Module) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	from, err := req.validate()
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	rate, err := m.rates.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("rate %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get rate for update", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load rate", r.URL.Path)
		return
	}

	rate.Metal = models.MetalType(req.Metal)
	rate.RatePerUnit = req.RatePerUnit
	rate.Unit = req.Unit
	if !from.IsZero() {
		rate.EffectiveFrom = from
	}

	if err := m.rates.Update(r.Context(), rate); err != nil {
		m.logger.Error("update rate", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to update rate", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (m *Module) handleDeleteRate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := m.rates.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("rate %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("delete rate", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete rate", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
