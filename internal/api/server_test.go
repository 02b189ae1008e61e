// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/dealflow/internal/api/middleware"
	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/form"
	"github.com/ManuGH/dealflow/internal/store"
	"github.com/ManuGH/dealflow/internal/tiering"
)

type staticSource struct{ cfg config.AppConfig }

func (s staticSource) Get() config.AppConfig { return s.cfg }

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (tiering.Configuration, error) {
	return tiering.Configuration{}, f.err
}
func (f failingStore) Save(context.Context, string, tiering.Configuration) error { return f.err }
func (f failingStore) Ping(context.Context) error                                { return f.err }
func (f failingStore) Close() error                                              { return nil }

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg config.AppConfig, st store.Store) http.Handler {
	t.Helper()
	s, err := New(Deps{Config: staticSource{cfg: cfg}, Store: st})
	require.NoError(t, err)
	return s.Handler()
}

// csrfCookie performs a GET of the form page and returns the issued token cookie.
func csrfCookie(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.DefaultCSRFCookie {
			return c
		}
	}
	t.Fatal("csrf cookie not issued")
	return nil
}

func submitJSON(h http.Handler, cookie *http.Cookie, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit-configuration/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
		req.Header.Set(middleware.HeaderCSRFToken, cookie.Value)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNew_ValidatesDeps(t *testing.T) {
	_, err := New(Deps{Store: store.NewMemoryStore()})
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = New(Deps{Config: staticSource{cfg: testConfig()}})
	assert.ErrorIs(t, err, ErrMissingStore)
}

func TestGetConfiguration_Empty(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-configuration/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"empty","data":{}}`, w.Body.String())
}

func TestSubmitThenGet(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestServer(t, testConfig(), st)
	cookie := csrfCookie(t, h)

	w := submitJSON(h, cookie, `{"Ownership":{"Private":2,"Public":null},"total_raised":{"tier_2":{"private_equity":500000}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"success","next":"/upload-csv/"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-configuration/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                `json:"status"`
		Data   tiering.Configuration `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Data.Ownership["Private"])
	assert.Equal(t, 2, *resp.Data.Ownership["Private"])
	assert.Equal(t, int64(500000), resp.Data.TotalRaised["tier_2"]["private_equity"])
}

func TestSubmit_NormalizesBeforeSaving(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestServer(t, testConfig(), st)
	cookie := csrfCookie(t, h)

	w := submitJSON(h, cookie, `{"Ownership":{"Private":9},"founding_year":{"tier_1":""},"FTE_Count":{"tier_1":{"Private":{"max":null,"min":null}}}}`)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := st.Load(context.Background(), config.DefaultOwner)
	require.NoError(t, err)
	assert.Nil(t, saved.Ownership["Private"])
	assert.Nil(t, saved.FoundingYear["tier_1"])
	assert.NotContains(t, saved.FTECount["tier_1"], "Private")
}

func TestSubmit_NullTotalRaisedStaysUnset(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestServer(t, testConfig(), st)
	cookie := csrfCookie(t, h)

	w := submitJSON(h, cookie, `{"total_raised":{"tier_1":{"Others":null,"private_equity":250},"tier_2":null,"tier_3":{}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	saved, err := st.Load(context.Background(), config.DefaultOwner)
	require.NoError(t, err)
	assert.NotContains(t, saved.TotalRaised["tier_1"], "Others")
	assert.Equal(t, int64(250), saved.TotalRaised["tier_1"]["private_equity"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="total_raised[tier_1][Others]" value=""`)
	assert.Contains(t, body, `name="total_raised[tier_1][private_equity]" value="250"`)

	resaved := form.Serialize(form.Build(saved))
	assert.NotContains(t, resaved.TotalRaised["tier_1"], "Others")
}

func TestSubmit_NoNextURL(t *testing.T) {
	cfg := testConfig()
	cfg.Submit.NextURL = ""
	h := newTestServer(t, cfg, store.NewMemoryStore())

	w := submitJSON(h, csrfCookie(t, h), `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
}

func TestSubmit_MalformedJSON(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := submitJSON(h, csrfCookie(t, h), `{"Ownership":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w)["status"])

	w = submitJSON(h, csrfCookie(t, h), `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_CSRFRejected(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := submitJSON(h, nil, `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"CSRF verification failed."}`, w.Body.String())

	cookie := csrfCookie(t, h)
	req := httptest.NewRequest(http.MethodPost, "/submit-configuration/", strings.NewReader(`{}`))
	req.AddCookie(cookie)
	req.Header.Set(middleware.HeaderCSRFToken, "not-the-token")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmit_CSRFDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CSRF.Enabled = false
	h := newTestServer(t, cfg, store.NewMemoryStore())

	w := submitJSON(h, nil, `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmit_InvalidMethod(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submit-configuration/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Invalid method"}`, w.Body.String())
}

func TestStoreFailures(t *testing.T) {
	cfg := testConfig()
	cfg.CSRF.Enabled = false
	h := newTestServer(t, cfg, failingStore{err: errors.New("disk on fire")})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-configuration/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, body["message"], "disk on fire")

	w = submitJSON(h, nil, `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgSaveError, decodeEnvelope(t, w)["message"])
}

func TestFormPage_PrefillsSavedConfiguration(t *testing.T) {
	st := store.NewMemoryStore()
	saved := tiering.New()
	saved.Ownership["Private"] = tiering.Int(2)
	require.NoError(t, st.Save(context.Background(), config.DefaultOwner, saved))
	h := newTestServer(t, testConfig(), st)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	html := w.Body.String()
	assert.Contains(t, html, `<option value="2" selected>2</option>`)
	assert.Equal(t, 1, strings.Count(html, " selected>2<"))
	assert.Contains(t, html, `name="csrfmiddlewaretoken"`)
	assert.Contains(t, html, `id="popup-message" class="popup" hidden`)
}

func TestFormPage_LoadFailureRendersBlank(t *testing.T) {
	h := newTestServer(t, testConfig(), failingStore{err: errors.New("unreachable")})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotRegexp(t, `value="[1-4]" selected`, body)
	assert.Contains(t, body, `<option value="" selected>Select</option>`)
}

func postForm(h http.Handler, cookie *http.Cookie, values url.Values) *httptest.ResponseRecorder {
	if cookie != nil {
		values.Set(middleware.FormCSRFField, cookie.Value)
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFormSubmit_RedirectsToNext(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestServer(t, testConfig(), st)

	w := postForm(h, csrfCookie(t, h), url.Values{
		form.OwnershipName("Private"):                           {"2"},
		form.TotalRaisedName(tiering.Tier(2), "private_equity"): {"500000"},
		form.CountryName("USA"):                                 {"7"},
	})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/upload-csv/", w.Header().Get("Location"))

	saved, err := st.Load(context.Background(), config.DefaultOwner)
	require.NoError(t, err)
	require.NotNil(t, saved.Ownership["Private"])
	assert.Equal(t, 2, *saved.Ownership["Private"])
	assert.Nil(t, saved.Country["USA"], "out of range option is not selectable")
	assert.Equal(t, int64(500000), saved.TotalRaised["tier_2"]["private_equity"])
	assert.Empty(t, saved.TotalRaised["tier_1"])
}

func TestFormSubmit_RendersSuccessNotice(t *testing.T) {
	cfg := testConfig()
	cfg.Submit.NextURL = ""
	h := newTestServer(t, cfg, store.NewMemoryStore())

	w := postForm(h, csrfCookie(t, h), url.Values{form.OwnershipName("Seed"): {"4"}})

	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, msgSaved)
	assert.Contains(t, html, `<option value="4" selected>4</option>`)
	assert.NotContains(t, html, `class="popup error"`)
}

func TestFormSubmit_SaveFailureRendersError(t *testing.T) {
	h := newTestServer(t, testConfig(), failingStore{err: errors.New("read only")})

	w := postForm(h, csrfCookie(t, h), url.Values{form.OwnershipName("Private"): {"1"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, msgSaveError)
	assert.Contains(t, html, `class="popup error"`)
	assert.Contains(t, html, `<option value="1" selected>1</option>`, "submitted values survive the failed save")
}

func TestFormSubmit_CSRFRejectedAsProblem(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := postForm(h, nil, url.Values{})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	body := decodeEnvelope(t, w)
	assert.Equal(t, ProblemCSRF, body["type"])
	assert.Equal(t, "CSRF_FAILED", body["code"])
	assert.NotEmpty(t, body["requestId"])
}

func TestSubmit_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.CSRF.Enabled = false
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerMinute = 1
	h := newTestServer(t, cfg, store.NewMemoryStore())

	assert.Equal(t, http.StatusOK, submitJSON(h, nil, `{}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, submitJSON(h, nil, `{}`).Code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-configuration/", nil))
	assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")
}

func TestProbes(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestServer(t, testConfig(), failingStore{err: errors.New("down")})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	h := newTestServer(t, testConfig(), store.NewMemoryStore())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, middleware.DefaultCSP, w.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}
