package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/cvparse/internal/config"
	"github.com/dgallion1/cvparse/internal/logger"
	"github.com/dgallion1/cvparse/internal/parser"
	"github.com/dgallion1/cvparse/internal/pipeline"
	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/dgallion1/cvparse/internal/stats"
	"github.com/dgallion1/cvparse/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `PERSONAL INFORMATION
Name: Jane Doe Email: jane@example.com Phone: +1 555 0100
EDUCATION
Springfield University, Springfield
BSc Computer Science
WORK EXPERIENCE
Engineer, Acme 2019
- Built the billing service
SKILLS
Go
PostgreSQL`

type testEnv struct {
	server *Server
	store  *storage.Memory
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Config{
		WorkerCount:    2,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	store := storage.NewMemory()
	records := storage.NewRecords(store)
	latency := stats.NewLatency(time.Hour, 0)
	worker := pipeline.NewWorker(records, nil, resume.NewParser(), latency, parser.Options{}, logger.Nop())
	orch := pipeline.NewOrchestrator(cfg, worker, logger.Nop())
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return &testEnv{
		server: NewServer(orch, records, latency, logger.Nop(), cfg),
		store:  store,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

type filePart struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, path string, parts ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload_StoresAndReturnsParsed(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(multipartRequest(t, "/upload", filePart{"file", "jane.txt", sampleResume}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	id, _ := body["id"].(string)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, "uploads/"+id+"/jane.txt", body["s3_file"])
	assert.Equal(t, "records/"+id+"/parsed.json", body["parsed_s3"])

	parsed := body["parsed"].(map[string]any)
	assert.Equal(t, "Jane Doe", parsed["personal"].(map[string]any)["name"])
	assert.Equal(t, []any{"Go", "PostgreSQL"}, parsed["skills"])
	assert.Equal(t, sampleResume, parsed["raw_text"])

	assert.Equal(t, []string{
		"records/" + id + "/parsed.json",
		"uploads/" + id + "/jane.txt",
	}, env.store.Keys(""))

	get := env.do(httptest.NewRequest(http.MethodGet, "/api/resumes/"+id, nil))
	require.Equal(t, http.StatusOK, get.Code)
	stored := decode(t, get)
	assert.Equal(t, id, stored["id"])
	assert.Equal(t, "jane.txt", stored["filename"])

	del := env.do(httptest.NewRequest(http.MethodDelete, "/api/resumes/"+id, nil))
	require.Equal(t, http.StatusOK, del.Code)
	assert.Empty(t, env.store.Keys(""))

	gone := env.do(httptest.NewRequest(http.MethodGet, "/api/resumes/"+id, nil))
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.MaxUploadBytes = 32 })

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantErr  string
	}{
		{
			name:     "no file part",
			req:      multipartRequest(t, "/upload", filePart{"resume", "cv.txt", "x"}),
			wantCode: http.StatusBadRequest,
			wantErr:  "no file part",
		},
		{
			name:     "not multipart",
			req:      httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x")),
			wantCode: http.StatusBadRequest,
			wantErr:  "no file part",
		},
		{
			name:     "no selected file",
			req:      multipartRequest(t, "/upload", filePart{"file", "", "x"}),
			wantCode: http.StatusBadRequest,
			wantErr:  "no selected file",
		},
		{
			name:     "unsupported type",
			req:      multipartRequest(t, "/upload", filePart{"file", "cv.exe", "x"}),
			wantCode: http.StatusBadRequest,
			wantErr:  "file type not allowed",
		},
		{
			name:     "too large",
			req:      multipartRequest(t, "/upload", filePart{"file", "cv.txt", strings.Repeat("a", 64)}),
			wantCode: http.StatusRequestEntityTooLarge,
		},
		{
			name:     "broken pdf",
			req:      multipartRequest(t, "/upload", filePart{"file", "cv.pdf", "not a pdf"}),
			wantCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decode(t, rec)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, body["error"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
	assert.Empty(t, env.store.Keys(""))
}

func TestParse(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("raw text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(sampleResume))
		req.Header.Set("Content-Type", "text/plain")
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Contains(t, body, "education")
		assert.Contains(t, body, "work_experience")
		assert.NotContains(t, body, "projects")
	})

	t.Run("json body with mode", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{"text": "SKILLS: Go", "mode": "prefix"})
		req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, decode(t, rec), "skills")
	})

	t.Run("empty body", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodPost, "/api/parse", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"raw_text":""}`, rec.Body.String())
	})

	t.Run("unknown mode", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodPost, "/api/parse?mode=fuzzy", strings.NewReader("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
	})

	stats := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil))
	require.Equal(t, http.StatusOK, stats.Code)
	parse := decode(t, stats)["parse"].(map[string]any)
	assert.EqualValues(t, 3, parse["count"])
}

func TestIngest_AsyncJob(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(multipartRequest(t, "/api/ingest", filePart{"file", "cv.md", "# SKILLS\n\n- Go\n- SQL\n"}))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	accepted := decode(t, rec)
	pollURL := accepted["poll_url"].(string)

	var status map[string]any
	require.Eventually(t, func() bool {
		rec := env.do(httptest.NewRequest(http.MethodGet, pollURL, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		status = decode(t, rec)
		return status["status"] == string(pipeline.StatusCompleted)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, accepted["resume_id"], status["resume_id"])
	progress := status["progress"].(map[string]any)
	assert.Equal(t, []any{"SKILLS"}, progress["sections"])
	assert.Equal(t, "records/"+accepted["resume_id"].(string)+"/parsed.json", progress["record_key"])
	parsed, ok := status["parsed"].(map[string]any)
	require.True(t, ok, "completed job should carry the parse result")
	assert.Equal(t, []any{"Go", "SQL"}, parsed["skills"])

	missing := env.do(httptest.NewRequest(http.MethodGet, "/api/ingest/nope/status", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestIngest_Batch(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(multipartRequest(t, "/api/ingest/batch",
		filePart{"files", "a.txt", "SKILLS\nGo"},
		filePart{"files", "b.xls", "x"},
	))
	require.Equal(t, http.StatusAccepted, rec.Code)

	jobs := decode(t, rec)["jobs"].([]any)
	require.Len(t, jobs, 2)
	assert.NotEmpty(t, jobs[0].(map[string]any)["job_id"])
	assert.Equal(t, "unsupported file type: .xls", jobs[1].(map[string]any)["error"])

	empty := env.do(multipartRequest(t, "/api/ingest/batch", filePart{"other", "a.txt", "x"}))
	assert.Equal(t, http.StatusBadRequest, empty.Code)
}

func TestResumes_InvalidID(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/resumes/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/resumes/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.APIKey = "secret" })

	health := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)

	noAuth := env.do(httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil))
	assert.Equal(t, http.StatusUnauthorized, noAuth.Code)
	assert.Equal(t, "missing authorization", decode(t, noAuth)["error"])

	req := httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil)
	req.Header.Set("Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, env.do(req).Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.CORSOrigins = []string{"https://app.example.com"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/parse", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.do(req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"cv.pdf", "cv.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\jane\cv.docx`, "cv.docx"},
		{"a..b.txt", "a_b.txt"},
		{"", "unnamed"},
		{"/", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
