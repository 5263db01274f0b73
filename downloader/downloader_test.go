package downloader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/jarcoal/httpmock"
)

func newTestDownloader(t *testing.T) (*Downloader, *httpmock.MockTransport) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ImageTimeout = 2 * time.Second

	transport := httpmock.NewMockTransport()
	d := New(cfg, NewMetrics())
	d.WithTransport(transport)
	return d, transport
}

func TestFetchSuccess(t *testing.T) {
	d, transport := newTestDownloader(t)
	url := "http://media.test/wp-content/uploads/pic.jpg"
	transport.RegisterResponder("GET", url, imageResponder([]byte("jpeg-bytes")))

	body, err := d.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "jpeg-bytes" {
		t.Fatalf("body=%q, want jpeg-bytes", body)
	}

	// a second fetch of the same URL must hit the network again
	if _, err := d.Fetch(context.Background(), url); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if requests, failures := d.Stats(); requests != 2 || failures != 0 {
		t.Fatalf("stats=%d/%d, want 2/0", requests, failures)
	}
}

func TestFetchHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusInternalServerError, expected: "http_status"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			d, transport := newTestDownloader(t)
			url := "http://media.test/missing.jpg"
			transport.RegisterResponder("GET", url, httpmock.NewStringResponder(tt.status, ""))

			_, err := d.Fetch(context.Background(), url)
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if got := ErrorLabel(err); got != tt.expected {
				t.Fatalf("label=%q, want %q (err=%v)", got, tt.expected, err)
			}
			if _, failures := d.Stats(); failures != 1 {
				t.Fatalf("failures=%d, want 1", failures)
			}
		})
	}
}

func TestFetchConnectionError(t *testing.T) {
	d, transport := newTestDownloader(t)
	url := "http://media.test/down.jpg"
	transport.RegisterResponder("GET", url, httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))

	_, err := d.Fetch(context.Background(), url)
	if got := ErrorLabel(err); got != "connection" {
		t.Fatalf("label=%q, want connection (err=%v)", got, err)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	d, transport := newTestDownloader(t)
	url := "http://media.test/empty.jpg"
	transport.RegisterResponder("GET", url, imageResponder(nil))

	_, err := d.Fetch(context.Background(), url)
	if got := ErrorLabel(err); got != "empty_body" {
		t.Fatalf("label=%q, want empty_body (err=%v)", got, err)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	d, _ := newTestDownloader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Fetch(ctx, "http://media.test/never.jpg")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if got := ErrorLabel(err); got != "canceled" {
		t.Fatalf("label=%q, want canceled", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: errors.New("Internal Server Error"), statusCode: http.StatusInternalServerError, expected: "http_status"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorLabel(classifyError("http://x.test/a.jpg", tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestMetricsTextfile(t *testing.T) {
	m := NewMetrics()
	m.IncPayload("image", OutcomeOK)
	m.IncPayload("markdown", OutcomeSkipped)
	m.IncError("not_found")

	path := filepath.Join(t.TempDir(), "wp2mdx.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`wp2mdx_payloads_total{kind="image",outcome="ok"} 1`,
		`wp2mdx_errors_total{error_type="not_found"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %q:\n%s", want, text)
		}
	}

	var nilMetrics *Metrics
	nilMetrics.IncPayload("image", OutcomeFailed)
	if err := nilMetrics.WriteTextfile(path); err != nil {
		t.Fatalf("nil metrics should be a no-op, got %v", err)
	}
}

func imageResponder(body []byte) httpmock.Responder {
	resp := httpmock.NewBytesResponse(200, body)
	resp.Header.Set("Content-Type", "image/jpeg")
	return httpmock.ResponderFromResponse(resp)
}
