package inspect

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/protocol"
	"github.com/vango-dev/fiber/pkg/sched"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Server, *fiber.Engine, *memhost.Host) {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := memhost.New()
	e := fiber.New(h, &sched.Immediate{},
		fiber.WithLogger(quietLogger()),
		fiber.WithMetrics(telemetry.NewMetrics(telemetry.WithRegistry(reg))))

	if err := e.Render(vdom.Div(vdom.ID("app"), vdom.P("hello")), h.Root()).Err(); err != nil {
		t.Fatal(err)
	}

	s := New(Config{
		Gatherer: reg,
		Tree: func(context.Context) (*fiber.TreeNode, error) {
			return e.Current().Tree(), nil
		},
		HTML: func(context.Context) (string, error) {
			return h.Snapshot(), nil
		},
		Logger: quietLogger(),
	})
	return s, e, h
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`vango_fiber_passes_total{outcome="committed"} 1`,
		"vango_fiber_units_total",
		`vango_fiber_host_mutations_total{op="append_child"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestTree(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/tree")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /tree = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var tree fiber.TreeNode
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatal(err)
	}
	if tree.Kind != "Root" || len(tree.Children) != 1 || tree.Children[0].Name != "div" {
		t.Errorf("tree = %+v", tree)
	}
}

func TestTreeError(t *testing.T) {
	s := New(Config{
		Gatherer: prometheus.NewRegistry(),
		Tree: func(context.Context) (*fiber.TreeNode, error) {
			return nil, context.DeadlineExceeded
		},
		Logger: quietLogger(),
	})
	if rec := get(t, s, "/tree"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /tree = %d, want 503", rec.Code)
	}
}

func TestHTML(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/html")
	if got := rec.Body.String(); got != `<div id="app"><p>hello</p></div>` {
		t.Errorf("GET /html = %q", got)
	}
}

func TestOptionalRoutes(t *testing.T) {
	s := New(Config{Gatherer: prometheus.NewRegistry(), Logger: quietLogger()})
	if rec := get(t, s, "/tree"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /tree = %d, want 404 without a TreeFunc", rec.Code)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", kind)
	}
	f, err := protocol.DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func waitClients(t *testing.T, f *Feed, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", f.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeed(t *testing.T) {
	s, _, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	first := &protocol.CommitFrame{Seq: 1, Generation: 1, Mutations: []protocol.Mutation{
		{Op: protocol.OpCreateElement, HID: "h1", Key: "div"},
	}}
	s.Feed().Publish(protocol.NewCommitFrame(first, protocol.FlagInitial))

	conn := dial(t, ts)

	// Late joiners get the last frame.
	got := readFrame(t, conn)
	if got.Type != protocol.FrameCommit || !got.Flags.Has(protocol.FlagInitial) {
		t.Errorf("first frame = %v flags %v", got.Type, got.Flags)
	}

	waitClients(t, s.Feed(), 1)
	s.Feed().Publish(protocol.NewErrorFrame("boom"))
	s.Feed().Publish(nil)

	got = readFrame(t, conn)
	if got.Type != protocol.FrameError || string(got.Payload) != "boom" {
		t.Errorf("second frame = %v %q", got.Type, got.Payload)
	}

	conn.Close()
	waitClients(t, s.Feed(), 0)
}

func TestServeShutdown(t *testing.T) {
	s, _, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	s := New(Config{Addr: "256.0.0.1:bad", Gatherer: prometheus.NewRegistry(), Logger: quietLogger()})
	err := s.ListenAndServe(context.Background())
	if err == nil || !strings.Contains(err.Error(), "E150") {
		t.Errorf("ListenAndServe() = %v, want E150", err)
	}
}
