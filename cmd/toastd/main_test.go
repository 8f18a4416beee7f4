package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/server"
	"github.com/vango-dev/toast/pkg/toast"
)

func newTestServer(t *testing.T) (*httptest.Server, *toast.Store) {
	t.Helper()
	store := toast.New()
	srv := server.New(store, nil)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
		store.Clear()
	})
	return ts, store
}

func TestAPIClient(t *testing.T) {
	ts, store := newTestServer(t)
	c := newAPIClient(ts.URL)
	ctx := context.Background()

	pos := "bottom-center"
	ms := int64(0)
	created, err := c.push(ctx, server.ToastRequest{
		Type:       "success",
		Message:    "Saved",
		Position:   &pos,
		DurationMs: &ms,
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if created.Type != "success" || created.Position != pos || created.DurationMs != 0 {
		t.Errorf("unexpected toast %+v", created)
	}

	list, err := c.list(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expected the pushed toast, got %+v", list)
	}

	if err := c.dismiss(ctx, created.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if err := c.dismiss(ctx, created.ID); !errors.HasCode(err, "E205") {
		t.Errorf("expected E205 for a second dismiss, got %v", err)
	}

	store.Info(toast.Text("a"), toast.Sticky())
	store.Info(toast.Text("b"), toast.Sticky())
	n, err := c.clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 || store.Len() != 0 {
		t.Errorf("expected 2 cleared, got %d (store has %d)", n, store.Len())
	}
}

func TestAPIClient_ServerError(t *testing.T) {
	ts, _ := newTestServer(t)

	_, err := newAPIClient(ts.URL).push(context.Background(), server.ToastRequest{
		Type:    "shout",
		Message: "x",
	})
	if !errors.HasCode(err, "E201") {
		t.Errorf("expected the server's E201, got %v", err)
	}
}

func TestAPIClient_UnexpectedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer ts.Close()

	_, err := newAPIClient(ts.URL).list(context.Background())
	if !errors.HasCode(err, "E402") {
		t.Errorf("expected E402, got %v", err)
	}
}

func TestAPIClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.Listener.Addr().String()
	ts.Close()

	_, err := newAPIClient(addr).list(context.Background())
	if !errors.HasCode(err, "E401") {
		t.Errorf("expected E401, got %v", err)
	}
}

func TestNewAPIClient_Base(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"", "http://" + config.DefaultAddress},
		{"localhost:8080", "http://localhost:8080"},
		{"https://toasts.example.com/", "https://toasts.example.com"},
	}

	for _, tt := range tests {
		if got := newAPIClient(tt.addr).base; got != tt.want {
			t.Errorf("newAPIClient(%q).base = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestParseDurationFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1500", 1500, false},
		{"0", 0, false},
		{"3s", 3000, false},
		{"250ms", 250, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDurationFlag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDurationFlag(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDurationFlag(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestInitConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := initConfig(dir, false, false)
	if err != nil {
		t.Fatalf("initConfig: %v", err)
	}
	if filepath.Base(path) != config.ConfigFileName {
		t.Errorf("expected %s, got %s", config.ConfigFileName, path)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Name != filepath.Base(dir) {
		t.Errorf("expected name %q, got %q", filepath.Base(dir), cfg.Name)
	}

	if _, err := initConfig(dir, true, false); !errors.HasCode(err, "E403") {
		t.Errorf("expected E403 for an existing config, got %v", err)
	}
	path, err = initConfig(dir, true, true)
	if err != nil {
		t.Fatalf("initConfig --force: %v", err)
	}
	if filepath.Base(path) != config.YAMLConfigFileName {
		t.Errorf("expected %s, got %s", config.YAMLConfigFileName, path)
	}
}

func TestLoadConfig(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "toast.json")); !errors.HasCode(err, "E101") {
		t.Errorf("expected E101 for an explicit missing file, got %v", err)
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig without a file: %v", err)
	}
	if cfg.Path() != "" || cfg.Server.Address != config.DefaultAddress {
		t.Errorf("expected built-in defaults, got %+v", cfg)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info("hidden")
	log.Warn("shown", "component", "test")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at warn level, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "shown" || entry["component"] != "test" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.New()
	cfg.Name = "staging"
	cfg.Defaults.Position = "bottom-start"

	srv, release, err := newServer(cfg, newLogger(cfg.Log, io.Discard))
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	defer release()
	defer srv.Shutdown(context.Background())

	if got := srv.Store().Defaults().Position; got != toast.BottomStart {
		t.Errorf("expected defaults from config, got %s", got)
	}

	srv.Store().Success(toast.Text("ok"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.Metrics.Path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "toast_toasts_created_total") {
		t.Errorf("expected toast_toasts_created_total in %q", rec.Body.String())
	}
}

func TestNewServer_InvalidDefaults(t *testing.T) {
	cfg := config.New()
	cfg.Defaults.Position = "middle"

	if _, _, err := newServer(cfg, newLogger(cfg.Log, io.Discard)); !errors.HasCode(err, "E202") {
		t.Errorf("expected E202, got %v", err)
	}
}

func TestRootCommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"serve", "push", "list", "dismiss", "clear", "config", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("expected %s command, got %v (%v)", name, cmd, err)
		}
	}
}
