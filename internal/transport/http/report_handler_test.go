package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakupscli/internal/config"
	"breakupscli/pkg/contracts/domain"
)

// stubGenerator returns a canned result and records what it was given.
type stubGenerator struct {
	result     domain.RunResult
	gotClient  string
	gotPayload []byte
}

func (s *stubGenerator) GenerateReport(_ context.Context, data []byte, clientName string) domain.RunResult {
	s.gotClient = clientName
	s.gotPayload = data
	return s.result
}

func multipartUpload(t *testing.T, clientName string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if clientName != "" {
		require.NoError(t, mw.WriteField("client_name", clientName))
	}
	if payload != nil {
		part, err := mw.CreateFormFile("workbook", "comps.xlsx")
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.RunResult {
	t.Helper()
	var result domain.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestReportHandler_Generate(t *testing.T) {
	stub := &stubGenerator{result: domain.RunResult{
		Success:  true,
		FileID:   "run-1",
		FileName: "Breakups_Report_Acme_Client_2026-08-01.zip",
		ZipSize:  1234,
		Contents: domain.PackageContents{Excel: true, Charts: 20, PDFs: 5, PropertyRadar: true, DataFiles: 2},
	}}
	handler := NewReportHandler(nil, stub, 0)

	body, contentType := multipartUpload(t, "Acme Client", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Client", stub.gotClient)
	assert.Equal(t, []byte("workbook-bytes"), stub.gotPayload)

	result := decodeResult(t, rec)
	assert.True(t, result.Success)
	assert.Equal(t, "run-1", result.FileID)
	assert.Equal(t, 5, result.Contents.PDFs)
}

func TestReportHandler_MissingClientName(t *testing.T) {
	handler := NewReportHandler(nil, &stubGenerator{}, 0)

	body, contentType := multipartUpload(t, "", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResult(t, rec).Error, "client_name")
}

func TestReportHandler_MissingWorkbook(t *testing.T) {
	handler := NewReportHandler(nil, &stubGenerator{}, 0)

	body, contentType := multipartUpload(t, "Acme Client", nil)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResult(t, rec).Error, "workbook")
}

func TestReportHandler_StatusFollowsFailureClass(t *testing.T) {
	tests := []struct {
		name       string
		runError   string
		wantStatus int
	}{
		{"ingestion failure is a client error", "workbook ingestion failed: no sale sheet", http.StatusUnprocessableEntity},
		{"packaging failure is a server error", "archive packaging failed: disk full", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{result: domain.RunResult{Success: false, Error: tt.runError}}
			handler := NewReportHandler(nil, stub, 0)

			body, contentType := multipartUpload(t, "Acme Client", []byte("bad"))
			req := httptest.NewRequest(http.MethodPost, "/", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.Generate(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, decodeResult(t, rec).Success)
		})
	}
}

func TestRouter_Endpoints(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.RateLimit.Enabled = false
	router := NewRouter(nil, cfg, &stubGenerator{result: domain.RunResult{Success: true}}, nil, "test")
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestReportHandler_OversizedUploadRejected(t *testing.T) {
	handler := NewReportHandler(nil, &stubGenerator{}, 64)

	payload := bytes.Repeat([]byte("x"), 4096)
	body, contentType := multipartUpload(t, "Acme Client", payload)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(body.Len())
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
