package webui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"imagestudio/catalog"
	"imagestudio/imagegen"
	"imagestudio/logging"
	"imagestudio/studio"
)

// stubProvider returns a solid image sized like the request, or err when set.
type stubProvider struct {
	mu    sync.Mutex
	calls []imagegen.GenerateRequest
	err   error
}

func (p *stubProvider) Generate(_ context.Context, req imagegen.GenerateRequest) (*imagegen.GenerateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	img := image.NewRGBA(image.Rect(0, 0, req.Width/16, req.Height/16))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 10, A: 0xff})
	return &imagegen.GenerateResult{Image: img, Model: "stub/model"}, nil
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub/model" }

func (p *stubProvider) Calls() []imagegen.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]imagegen.GenerateRequest(nil), p.calls...)
}

var errStubUnauthorized = errors.New("401 Client Error: Unauthorized for url")

// newTestServer builds a studio server around provider with throttling off.
func newTestServer(t *testing.T, provider imagegen.Provider) *Server {
	t.Helper()
	ctrl, err := studio.NewController(catalog.Default(), provider, logging.NewNopLogger(), studio.Options{})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	srv, err := NewServer(DefaultServerConfig(), ctrl, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

// browser replays the session cookie across requests like a real client.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newBrowser(t *testing.T, srv *Server) *browser {
	return &browser{t: t, handler: srv.Handler()}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}

	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form)
}

// page fetches / and returns the body, failing unless it is a 200.
func (b *browser) page() string {
	b.t.Helper()
	rec := b.get("/")
	if rec.Code != http.StatusOK {
		b.t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	return rec.Body.String()
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}
