package notify

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pumon/internal/config"
	"pumon/pkg/logx"
)

func TestPushSinkEncodesPayload(t *testing.T) {
	var gotMsg string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotMsg = r.PostFormValue("msg")
	}))
	defer srv.Close()

	sink := NewPushSink(srv.URL)
	msgs := []string{"第一条消息", "第二条消息"}
	if err := sink.Send(context.Background(), msgs); err != nil {
		t.Fatalf("Send: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(gotMsg)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	want := "第一条消息" + separator + "第二条消息"
	if string(decoded) != want {
		t.Fatalf("payload = %q, want %q", decoded, want)
	}
}

func TestPushSinkStripsQueryString(t *testing.T) {
	sink := NewPushSink("http://example.com/message.php?msg=")
	if sink.url != "http://example.com/message.php" {
		t.Fatalf("query string not stripped: %q", sink.url)
	}
}

func TestPushSinkNonOKIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewPushSink(srv.URL).Send(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestDispatcherFallsBackToStdout(t *testing.T) {
	cfg := &config.Config{}
	d, err := New(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(d.sinks) != 1 {
		t.Fatalf("expected exactly the stdout fallback, got %d sinks", len(d.sinks))
	}
	if _, ok := d.sinks[0].(StdoutSink); !ok {
		t.Fatalf("expected StdoutSink, got %T", d.sinks[0])
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := &Dispatcher{sinks: []Sink{NewPushSink(srv.URL), StdoutSink{}}, log: logx.Nop()}
	if failed := d.Dispatch(context.Background(), []string{"m"}); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	// Empty runs never touch the sinks.
	if failed := d.Dispatch(context.Background(), nil); failed != 0 {
		t.Fatalf("empty dispatch must be a no-op")
	}
}

func TestSeparatorShape(t *testing.T) {
	if !strings.Contains(separator, strings.Repeat("-", 30)) {
		t.Fatalf("separator lost its divider: %q", separator)
	}
}
