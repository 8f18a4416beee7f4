package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

func newTestHub(max, buffer int) *hub {
	return newHub(max, buffer, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHubBroadcast(t *testing.T) {
	h := newTestHub(0, 4)
	a, _ := h.add()
	b, _ := h.add()
	if a.id == b.id {
		t.Fatal("expected unique client ids")
	}

	h.broadcast(toast.Change{Seq: 7, Kind: toast.ChangeCreated, Toast: toast.Toast{ID: 3, Type: toast.TypeInfo}})

	for _, c := range []*streamClient{a, b} {
		f := <-c.send
		if f.seq != 7 {
			t.Errorf("expected seq 7, got %d", f.seq)
		}
		var frame Frame
		if err := json.Unmarshal(f.data, &frame); err != nil {
			t.Fatal(err)
		}
		if frame.Kind != "created" || frame.Toast.ID != 3 {
			t.Errorf("unexpected frame %+v", frame)
		}
	}
}

func TestHubDropsFullClient(t *testing.T) {
	h := newTestHub(0, 1)
	slow, _ := h.add()
	fast, _ := h.add()

	h.broadcast(toast.Change{Seq: 1, Kind: toast.ChangeCreated})
	<-fast.send
	h.broadcast(toast.Change{Seq: 2, Kind: toast.ChangeCreated})

	if h.len() != 1 {
		t.Fatalf("expected slow client to be dropped, %d left", h.len())
	}
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("expected slow client queue to be closed")
	}
	if f := <-fast.send; f.seq != 2 {
		t.Errorf("expected fast client to get seq 2, got %d", f.seq)
	}
}

func TestHubLimitAndClose(t *testing.T) {
	h := newTestHub(1, 1)
	c, err := h.add()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.add(); !errors.HasCode(err, "E304") {
		t.Errorf("expected E304, got %v", err)
	}

	h.remove(c)
	h.remove(c)
	if _, err := h.add(); err != nil {
		t.Errorf("expected free slot after remove: %v", err)
	}

	h.close()
	if h.len() != 0 {
		t.Errorf("expected no clients after close, got %d", h.len())
	}
	if _, err := h.add(); !errors.HasCode(err, "E302") {
		t.Errorf("expected E302 after close, got %v", err)
	}
	// Broadcasting to a closed hub is a no-op.
	h.broadcast(toast.Change{Seq: 3, Kind: toast.ChangeCleared})
}

func TestEncodeChangeCleared(t *testing.T) {
	f := encodeChange(toast.Change{
		Seq:     4,
		Kind:    toast.ChangeCleared,
		Toast:   toast.Toast{ID: -1},
		Removed: []toast.Toast{{ID: 1}, {ID: 2}},
	})
	if f.Toast != nil {
		t.Error("cleared frames carry no single toast")
	}
	if len(f.Removed) != 2 || f.Removed[1] != 2 {
		t.Errorf("unexpected removed ids %v", f.Removed)
	}
	if f.Toasts == nil {
		t.Error("toasts should encode as an empty list, not null")
	}
}

func TestConfigDefaults(t *testing.T) {
	var nilConfig *Config
	cfg := nilConfig.withDefaults()
	if cfg.Address != DefaultConfig().Address || cfg.ClientBuffer != 32 || cfg.Logger == nil {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	custom := &Config{Address: ":9", AllowedOrigins: []string{"*"}}
	cfg = custom.withDefaults()
	if cfg.Address != ":9" || cfg.CheckOrigin == nil {
		t.Errorf("unexpected config %+v", cfg)
	}
	cfg.AllowedOrigins[0] = "changed"
	if custom.AllowedOrigins[0] != "*" {
		t.Error("withDefaults should not share AllowedOrigins with the caller")
	}
}

func TestPumpDropsFramesBehindNewerOnes(t *testing.T) {
	store := toast.New()
	srv := New(store, &Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	read := func() Frame {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		return f
	}
	snap := read()

	// Deliver seq 2 ahead of seq 1, as concurrent notifiers can.
	for _, seq := range []uint64{2, 1, 3} {
		srv.hub.broadcast(toast.Change{Seq: snap.Seq + seq, Kind: toast.ChangeCreated, Toast: toast.Toast{ID: int(seq)}})
	}

	if f := read(); f.Seq != snap.Seq+2 {
		t.Errorf("expected seq %d first, got %d", snap.Seq+2, f.Seq)
	}
	if f := read(); f.Seq != snap.Seq+3 {
		t.Errorf("expected the stale frame to be skipped, got seq %d", f.Seq)
	}
}
