// Package apitest drives echo handlers in tests the way the server wires them.
package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"OCLAdmin/internal/auth"
	"OCLAdmin/pkg/pagination"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Body mirrors response.Envelope with Data left raw.
type Body struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       json.RawMessage  `json:"data"`
	Error      string           `json:"error"`
	Code       string           `json:"code"`
	Details    []string         `json:"details"`
	Pagination *pagination.Meta `json:"pagination"`
	Search     *string          `json:"search"`
}

// DecodeData unmarshals the data member into v.
func (b Body) DecodeData(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(b.Data, v); err != nil {
		t.Fatalf("decoding data %s: %v", b.Data, err)
	}
}

// NewEcho returns an echo instance with the production error handler.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(zap.NewNop())
	return e
}

// As injects p as the authenticated principal for every request.
func As(p *auth.Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.WithPrincipal(c, p)
			return next(c)
		}
	}
}

// Request is one call against an echo instance.
type Request struct {
	Method string
	Path   string
	// Body is sent as JSON unless it is a string, which is sent verbatim.
	Body  interface{}
	Token string
}

// Do serves r and decodes the JSON envelope.
func Do(t *testing.T, e *echo.Echo, r Request) (*httptest.ResponseRecorder, Body) {
	t.Helper()
	rr := Raw(t, e, r)
	var body Body
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s %s: decoding body %q: %v", r.Method, r.Path, rr.Body.String(), err)
	}
	return rr, body
}

// Raw serves r without decoding the response.
func Raw(t *testing.T, e *echo.Echo, r Request) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := r.Body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		if payload, err = json.Marshal(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(r.Method, r.Path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.Token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.Token)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

// Expect fails unless rr carries status.
func Expect(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d (%s), got %d: %s", status, http.StatusText(status), rr.Code, rr.Body.String())
	}
}
