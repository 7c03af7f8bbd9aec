package parties

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/internal/testutil"
	"github.com/dhatukala/dhatukala/pkg/models"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	st := testutil.NewStore(t)
	m := New(st, nil)
	if err := m.Init(viper.New(), zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m
}

func seedParty(t *testing.T, m *Module, opts ...func(*models.Party)) models.Party {
	t.Helper()
	p := testutil.NewParty(opts...)
	if err := m.parties.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed party: %v", err)
	}
	return p
}

func TestHandleCreateParty(t *testing.T) {
	m := newTestModule(t)

	body := `{"name":"Gupta Emporium","type":"distributor","city":"Varanasi"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	m.handleCreateParty(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var got models.Party
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == "" {
		t.Error("created party has no ID")
	}
	if got.Type != models.PartyDistributor {
		t.Errorf("Type = %q, want distributor", got.Type)
	}
}

func TestHandleCreateParty_Validation(t *testing.T) {
	m := newTestModule(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"type":"customer"}`},
		{"bad type", `{"name":"x","type":"wholesaler"}`},
		{"bad json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			m.handleCreateParty(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleGetParty_NotFound(t *testing.T) {
	m := newTestModule(t)

	req := httptest.NewRequest(http.MethodGet, "/missing", http.NoBody)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	m.handleGetParty(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleListParties_FilterAndPaginate(t *testing.T) {
	m := newTestModule(t)
	seedParty(t, m, testutil.WithPartyType(models.PartyCustomer))
	seedParty(t, m, testutil.WithPartyType(models.PartyCustomer))
	seedParty(t, m, testutil.WithPartyType(models.PartyDistributor))

	req := httptest.NewRequest(http.MethodGet, "/?type=customer&limit=1", http.NoBody)
	w := httptest.NewRecorder()

	m.handleListParties(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var result services.ListResult[models.Party]
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	if len(result.Items) != 1 {
		t.Errorf("Items = %d, want 1 (limit)", len(result.Items))
	}
}

func TestHandleUpdateParty(t *testing.T) {
	m := newTestModule(t)
	p := seedParty(t, m)

	body := `{"name":"Sharma Handicrafts","type":"customer","city":"Udaipur"}`
	req := httptest.NewRequest(http.MethodPut, "/"+p.ID, strings.NewReader(body))
	req.SetPathValue("id", p.ID)
	w := httptest.NewRecorder()

	m.handleUpdateParty(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	stored, err := m.parties.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get updated: %v", err)
	}
	if stored.City != "Udaipur" {
		t.Errorf("City = %q, want %q", stored.City, "Udaipur")
	}
}

func TestHandleDeleteParty(t *testing.T) {
	m := newTestModule(t)
	p := seedParty(t, m)

	req := httptest.NewRequest(http.MethodDelete, "/"+p.ID, http.NoBody)
	req.SetPathValue("id", p.ID)
	w := httptest.NewRecorder()

	m.handleDeleteParty(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if _, err := m.parties.Get(context.Background(), p.ID); err != services.ErrNotFound {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}
