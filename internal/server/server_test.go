package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/ingestion/ingestiontest"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/server/ratelimit"
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
)

const (
	scenarioCV  = "Python, Django, 5 years of experience, senior backend engineer"
	scenarioJob = "Python, Django, React, senior level, 3+ years"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Port:           config.DefaultPort,
		Language:       config.DefaultLanguage,
		MaxUploadBytes: 1 << 20,
		ShutdownGrace:  time.Second,
	}
}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig, *Deps)) *Server {
	t.Helper()

	tax, err := taxonomy.Default()
	require.NoError(t, err)

	cfg := testConfig()
	deps := Deps{
		Analyzer:    pipeline.New(tax, pipeline.Options{}),
		RateLimiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
	}
	if mutate != nil {
		mutate(cfg, &deps)
	}

	s, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *upload) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cv_file"; filename="%s"`, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func lookup(body map[string]any, keys ...string) any {
	var cur any = body
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

func TestNew_RequiresAnalyzer(t *testing.T) {
	_, err := New(testConfig(), Deps{})
	assert.Error(t, err)

	_, err = New(nil, Deps{})
	assert.Error(t, err)
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{
		"message": "CV Analyzer API",
		"status":  "running",
		"version": Version,
	}, decodeBody(t, w))
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t, nil)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "database")
	assert.Greater(t, lookup(body, "taxonomy", "skills"), 0.0)
	assert.Greater(t, lookup(body, "taxonomy", "categories"), 0.0)
}

func TestAnalyzeText_Success(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, jsonRequest(t, "/api/analyze/text", map[string]string{
		"cv_text":   scenarioCV,
		"job_offer": scenarioJob,
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Analysis completed successfully", body["message"])
	assert.NotContains(t, body, "analysis_id")
	assert.Equal(t, 70.0, lookup(body, "data", "match_result", "total_score"))
	assert.Nil(t, lookup(body, "data", "cv_info"))
	assert.NotNil(t, lookup(body, "data", "cv_analysis"))
	assert.NotNil(t, lookup(body, "data", "job_analysis"))
}

func TestAnalyzeText_Language(t *testing.T) {
	tests := []struct {
		name        string
		language    string
		accept      string
		wantMessage string
		wantPrefix  string
	}{
		{
			name:        "explicit spanish",
			language:    "es",
			wantMessage: "Análisis completado correctamente",
			wantPrefix:  "Tecnología requerida: React",
		},
		{
			name:        "accept-language spanish",
			accept:      "es-ES,es;q=0.9,en;q=0.5",
			wantMessage: "Análisis completado correctamente",
			wantPrefix:  "Tecnología requerida: React",
		},
		{
			name:        "explicit wins over header",
			language:    "en",
			accept:      "es",
			wantMessage: "Analysis completed successfully",
			wantPrefix:  "Required technology: React",
		},
		{
			name:        "unsupported falls back to english",
			language:    "fr",
			wantMessage: "Analysis completed successfully",
			wantPrefix:  "Required technology: React",
		},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, "/api/analyze/text", map[string]string{
				"cv_text":   scenarioCV,
				"job_offer": scenarioJob,
				"language":  tt.language,
			})
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}

			w := serve(s, req)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantMessage, body["message"])

			critical, ok := lookup(body, "data", "recommendations", "critical").([]any)
			require.True(t, ok)
			found := false
			for _, c := range critical {
				if strings.HasPrefix(c.(string), tt.wantPrefix) {
					found = true
				}
			}
			assert.True(t, found, "critical recommendations: %v", critical)
		})
	}
}

func TestAnalyzeText_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "invalid json", body: `{"cv_text":`, wantErr: "validation error: body - invalid JSON"},
		{name: "missing cv_text", body: `{"job_offer":"Go"}`, wantErr: "validation error: cv_text - required"},
		{name: "missing job_offer", body: `{"cv_text":"Go"}`, wantErr: "validation error: job_offer - required"},
		{name: "bad language", body: `{"cv_text":"Go","job_offer":"Go","language":"not a tag"}`, wantErr: "validation error: language - bcp47_language_tag"},
		{name: "blank cv_text", body: `{"cv_text":"   ","job_offer":"Go"}`, wantErr: "résumé text is empty"},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(tt.body))
			w := serve(s, req)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w)["error"], tt.wantErr)
		})
	}
}

func TestAnalyze_PDFUpload(t *testing.T) {
	s := newTestServer(t, nil)
	pdf := ingestiontest.PDF([]string{scenarioCV})

	w := serve(s, multipartRequest(t,
		map[string]string{"job_offer": scenarioJob},
		&upload{filename: "cv.pdf", contentType: "application/pdf", data: pdf},
	))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "cv.pdf", lookup(body, "data", "cv_info", "filename"))
	assert.Equal(t, float64(len(pdf)), lookup(body, "data", "cv_info", "size_bytes"))
	assert.Equal(t, 1.0, lookup(body, "data", "cv_info", "num_pages"))
	assert.Equal(t, 70.0, lookup(body, "data", "match_result", "total_score"))
}

func TestAnalyze_OctetStreamWithPDFName(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, multipartRequest(t,
		map[string]string{"job_offer": scenarioJob},
		&upload{filename: "cv.pdf", contentType: "application/octet-stream", data: ingestiontest.PDF([]string{scenarioCV})},
	))

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAnalyze_Rejections(t *testing.T) {
	tooBig := bytes.Repeat([]byte("a"), 1<<20+1)

	tests := []struct {
		name       string
		fields     map[string]string
		file       *upload
		wantStatus int
		wantErr    string
	}{
		{
			name:       "not a pdf",
			fields:     map[string]string{"job_offer": scenarioJob},
			file:       &upload{filename: "cv.txt", contentType: "text/plain", data: []byte(scenarioCV)},
			wantStatus: http.StatusBadRequest,
			wantErr:    "The file must be a PDF",
		},
		{
			name:       "not a pdf in spanish",
			fields:     map[string]string{"job_offer": scenarioJob, "language": "es"},
			file:       &upload{filename: "cv.docx", contentType: ingestion.ContentTypeDOCX, data: []byte("PK")},
			wantStatus: http.StatusBadRequest,
			wantErr:    "El archivo debe ser un PDF",
		},
		{
			name:       "over the size limit",
			fields:     map[string]string{"job_offer": scenarioJob},
			file:       &upload{filename: "cv.pdf", contentType: "application/pdf", data: tooBig},
			wantStatus: http.StatusBadRequest,
			wantErr:    "exceeds the maximum size of 1 MB",
		},
		{
			name:       "missing file",
			fields:     map[string]string{"job_offer": scenarioJob},
			wantStatus: http.StatusBadRequest,
			wantErr:    "validation error: cv_file - required",
		},
		{
			name:       "missing job offer",
			fields:     map[string]string{"language": "es"},
			file:       &upload{filename: "cv.pdf", contentType: "application/pdf", data: ingestiontest.PDF([]string{scenarioCV})},
			wantStatus: http.StatusBadRequest,
			wantErr:    "El texto de la oferta es obligatorio",
		},
		{
			name:       "corrupt pdf",
			fields:     map[string]string{"job_offer": scenarioJob},
			file:       &upload{filename: "cv.pdf", contentType: "application/pdf", data: []byte("this is not a pdf")},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "Could not extract text from the PDF",
		},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, multipartRequest(t, tt.fields, tt.file))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, decodeBody(t, w)["error"], tt.wantErr)
		})
	}
}

func TestAnalyze_BodyOverLimit(t *testing.T) {
	s := newTestServer(t, nil)

	huge := bytes.Repeat([]byte("a"), 3<<20)
	w := serve(s, multipartRequest(t,
		map[string]string{"job_offer": scenarioJob},
		&upload{filename: "cv.pdf", contentType: "application/pdf", data: huge},
	))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "exceeds the maximum size")
}

func TestAnalyze_NotMultipart(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, jsonRequest(t, "/api/analyze", map[string]string{"job_offer": scenarioJob}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation error: body - multipart form required", decodeBody(t, w)["error"])
}

func TestAnalyzeStream(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, jsonRequest(t, "/api/analyze/stream", map[string]string{
		"cv_text":   scenarioCV,
		"job_offer": scenarioJob,
	}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	out := w.Body.String()
	assert.Equal(t, 4, strings.Count(out, "event: progress\n"))
	for _, stage := range []string{pipeline.StageParseCV, pipeline.StageParseJob, pipeline.StageScore, pipeline.StageRecommend} {
		assert.Contains(t, out, fmt.Sprintf(`"step":%q`, stage))
	}
	assert.Contains(t, out, "event: result\n")
	assert.True(t, strings.Index(out, "event: result") > strings.LastIndex(out, "event: progress"))
	assert.Contains(t, out, `"total_score":70`)
}

func TestAnalyzeStream_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, jsonRequest(t, "/api/analyze/stream", map[string]string{"job_offer": scenarioJob}))
	assert.Equal(t, http.StatusBadRequest, w.Code, "validation happens before streaming starts")

	w = serve(s, jsonRequest(t, "/api/analyze/stream", map[string]string{
		"cv_text":   "  ",
		"job_offer": scenarioJob,
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error\n")
	assert.Contains(t, w.Body.String(), "résumé text is empty")
	assert.NotContains(t, w.Body.String(), "event: result")
}

func TestHistory_Disabled(t *testing.T) {
	s := newTestServer(t, nil)

	for _, p := range []string{"/api/analyses", "/api/analyses/" + uuid.NewString()} {
		w := serve(s, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, p)
		assert.Equal(t, "analysis history is not enabled", decodeBody(t, w)["error"])
	}
}

func TestAuth(t *testing.T) {
	jwtService := setupTestJWTService(t, 1)
	s := newTestServer(t, func(_ *config.ServerConfig, d *Deps) {
		d.JWT = jwtService
	})

	t.Run("api requires token", func(t *testing.T) {
		w := serve(s, jsonRequest(t, "/api/analyze/text", map[string]string{"cv_text": scenarioCV, "job_offer": scenarioJob}))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeBody(t, w)["error"])
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtService.GenerateToken("recruiting-portal")
		require.NoError(t, err)

		req := jsonRequest(t, "/api/analyze/text", map[string]string{"cv_text": scenarioCV, "job_offer": scenarioJob})
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(s, req)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("public endpoints stay open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
		assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	})

	t.Run("preflight skips auth", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(s, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Empty(t, w.Body.String())
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	w = serve(s, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = serve(s, req)
	assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/api/analyze/text", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	})
	s := newTestServer(t, func(_ *config.ServerConfig, d *Deps) {
		d.RateLimiter = limiter
	})

	payload := map[string]string{"cv_text": scenarioCV, "job_offer": scenarioJob}

	w := serve(s, jsonRequest(t, "/api/analyze/text", payload))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(s, jsonRequest(t, "/api/analyze/text", payload))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	body := decodeBody(t, w)
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.Equal(t, 1.0, body["limit"])

	w = serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is never limited")
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, sse.WriteEvent(eventProgress, pipeline.ProgressEvent{Step: "score", Message: "total score 70.00"}))
	sse.WriteError("boom")

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t,
		"event: progress\ndata: {\"step\":\"score\",\"message\":\"total score 70.00\"}\n\n"+
			"event: error\ndata: {\"error\":\"boom\"}\n\n",
		w.Body.String())
}

func TestJSONResponse(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()

	s.errorResponse(w, http.StatusTeapot, "short and stout")

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"short and stout"}`, w.Body.String())
}
