package module

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// testModule is a minimal module for registry tests.
type testModule struct {
	name    string
	initErr error
	inited  bool
	started bool
	stopped bool
	routes  []Route
}

func (m *testModule) Name() string    { return m.name }
func (m *testModule) Version() string { return "0.0.1" }
func (m *testModule) Init(_ *viper.Viper, _ *zap.Logger) error {
	m.inited = true
	return m.initErr
}
func (m *testModule) Start(_ context.Context) error { m.started = true; return nil }
func (m *testModule) Stop() error                   { m.stopped = true; return nil }
func (m *testModule) Routes() []Route               { return m.routes }

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry(testLogger())

	if err := reg.Register(&testModule{name: "catalog"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(&testModule{name: "catalog"}); err == nil {
		t.Fatal("Register() accepted a duplicate name")
	}
}

func TestInitAllRespectsEnabledFlag(t *testing.T) {
	reg := NewRegistry(testLogger())
	on := &testModule{name: "catalog"}
	off := &testModule{name: "rates"}
	if err := reg.Register(on); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(off); err != nil {
		t.Fatal(err)
	}

	cfg := viper.New()
	cfg.Set("modules.rates.enabled", false)

	if err := reg.InitAll(cfg); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if !on.inited {
		t.Error("enabled module was not initialized")
	}
	if off.inited {
		t.Error("disabled module was initialized")
	}
}

func TestInitAllPropagatesError(t *testing.T) {
	reg := NewRegistry(testLogger())
	bad := &testModule{name: "exports", initErr: errors.New("boom")}
	if err := reg.Register(bad); err != nil {
		t.Fatal(err)
	}

	if err := reg.InitAll(viper.New()); err == nil {
		t.Fatal("InitAll() swallowed a module init error")
	}
}

func TestStartStopAll(t *testing.T) {
	reg := NewRegistry(testLogger())
	mods := []*testModule{{name: "a"}, {name: "b"}}
	for _, m := range mods {
		if err := reg.Register(m); err != nil {
			t.Fatal(err)
		}
	}

	if err := reg.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	reg.StopAll()

	for _, m := range mods {
		if !m.started || !m.stopped {
			t.Errorf("module %s lifecycle incomplete: started=%v stopped=%v", m.name, m.started, m.stopped)
		}
	}
}

func TestAllRoutes(t *testing.T) {
	reg := NewRegistry(testLogger())
	handler := func(http.ResponseWriter, *http.Request) {}
	withRoutes := &testModule{
		name:   "catalog",
		routes: []Route{{Method: "GET", Path: "/products", Handler: handler}},
	}
	bare := &testModule{name: "rates"}
	if err := reg.Register(withRoutes); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(bare); err != nil {
		t.Fatal(err)
	}

	routes := reg.AllRoutes()
	if len(routes) != 1 {
		t.Fatalf("AllRoutes() returned %d modules, want 1", len(routes))
	}
	if got := routes["catalog"]; len(got) != 1 || got[0].Path != "/products" {
		t.Errorf("AllRoutes()[catalog] = %+v", got)
	}
}
