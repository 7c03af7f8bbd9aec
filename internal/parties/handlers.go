package parties

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/server"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// partyRequest is the JSON body for POST / and PUT /{id}.
type partyRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	City    string `json:"city"`
	Notes   string `json:"notes"`
}

func (req *partyRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if !models.PartyType(req.Type).Valid() {
		return fmt.Errorf("type must be %q or %q", models.PartyCustomer, models.PartyDistributor)
	}
	return nil
}

func (req *partyRequest) apply(p *models.Party) {
	p.Name = req.Name
	p.Type = models.PartyType(req.Type)
	p.Contact = req.Contact
	p.Email = req.Email
	p.City = req.City
	p.Notes = req.Notes
}

func (m *Module) handleListParties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.PartyFilter{
		Type:   q.Get("type"),
		Search: q.Get("search"),
	}
	opts := services.ListOptions{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	opts.Offset, _ = strconv.Atoi(q.Get("offset"))

	result, err := m.parties.List(r.Context(), filter, opts)
	if err != nil {
		m.logger.Error("list parties", zap.Error(err))
		server.InternalError(w, "failed to list parties", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (m *Module) handleGetParty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := m.parties.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("party %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get party", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load party", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (m *Module) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if err := req.validate(); err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	var p models.Party
	req.apply(&p)

	if err := m.parties.Create(r.Context(), &p); err != nil {
		m.logger.Error("create party", zap.Error(err))
		server.InternalError(w, "failed to create party", r.URL.Path)
		return
	}

	m.logger.Info("party created",
		zap.String("id", p.ID),
		zap.String("name", p.Name),
		zap.String("type", string(p.Type)),
	)
	writeJSON(w, http.StatusCreated, p)
}

func (m *Module) handleUpdateParty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if err := req.validate(); err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	p, err := m.parties.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("party %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get party for update", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to load party", r.URL.Path)
		return
	}

	req.apply(p)
	if err := m.parties.Update(r.Context(), p); err != nil {
		m.logger.Error("update party", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to update party", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (m *Module) handleDeleteParty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := m.parties.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("party %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("delete party", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete party", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
