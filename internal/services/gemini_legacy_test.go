package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
)

// fakeGeminiAPI serves the v1beta file and generate endpoints for both
// client variants.
type fakeGeminiAPI struct {
	server        *httptest.Server
	polls         atomic.Int32
	readyAfter    int32
	genStatus     int
	startHeader   http.Header
	finishHeader  http.Header
	finishLength  int64
	finishChunked bool
	uploaded      []byte
	genPath       string
	genBody       map[string]interface{}
}

func newFakeGeminiAPI(t *testing.T) *fakeGeminiAPI {
	f := &fakeGeminiAPI{genStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/upload/v1beta/files", func(w http.ResponseWriter, r *http.Request) {
		f.startHeader = r.Header.Clone()
		w.Header().Set("X-Goog-Upload-URL", f.server.URL+"/resumable/session-1")
		w.Header().Set("X-Goog-Upload-Status", "active")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/resumable/session-1", func(w http.ResponseWriter, r *http.Request) {
		f.finishHeader = r.Header.Clone()
		f.finishLength = r.ContentLength
		f.finishChunked = len(r.TransferEncoding) > 0
		f.uploaded, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Goog-Upload-Status", "final")
		io.WriteString(w, `{"file":{"name":"files/abc","uri":"https://generativelanguage.test/v1beta/files/abc","mimeType":"video/mp4","state":"PROCESSING"}}`)
	})
	mux.HandleFunc("/v1beta/files/abc", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		state := "PROCESSING"
		if f.polls.Add(1) >= f.readyAfter {
			state = "ACTIVE"
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name":"files/abc","uri":"https://generativelanguage.test/v1beta/files/abc","mimeType":"video/mp4","state":"`+state+`"}`)
	})
	mux.HandleFunc("/v1beta/models/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		f.genPath = r.URL.Path
		f.genBody = nil
		_ = json.NewDecoder(r.Body).Decode(&f.genBody)
		w.Header().Set("Content-Type", "application/json")
		if f.genStatus != http.StatusOK {
			w.WriteHeader(f.genStatus)
			io.WriteString(w, `{"error":{"code":500,"message":"backend exploded"}}`)
			return
		}
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"`+"```json\\n{\\\"name\\\":\\\"Alice\\\"}\\n```"+`"}]}}]}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// genParts returns the parts of the first content in the last generate body.
func (f *fakeGeminiAPI) genParts(t *testing.T) []map[string]interface{} {
	t.Helper()
	contents, ok := f.genBody["contents"].([]interface{})
	require.True(t, ok, "generate body has no contents")
	require.NotEmpty(t, contents)
	raw, ok := contents[0].(map[string]interface{})["parts"].([]interface{})
	require.True(t, ok, "first content has no parts")

	parts := make([]map[string]interface{}, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, p.(map[string]interface{}))
	}
	return parts
}

func newLegacyForTest(t *testing.T, baseURL string) Gateway {
	t.Helper()
	gw, err := NewLegacyGeminiService(config.GeminiConfig{
		APIKey:         "test-key",
		LegacyModel:    "gemini-1.5-flash",
		BaseURL:        baseURL,
		PollInterval:   time.Millisecond,
		ReadyTimeout:   time.Second,
		RequestTimeout: 5 * time.Second,
	}, logger.NewNop())
	require.NoError(t, err)
	return gw
}

func writeVideo(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLegacyUploadAndGenerate(t *testing.T) {
	api := newFakeGeminiAPI(t)
	api.readyAfter = 2
	gw := newLegacyForTest(t, api.server.URL)

	file, err := gw.UploadMedia(context.Background(), writeVideo(t, "intro.mp4", "mp4-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "test-key", api.startHeader.Get("x-goog-api-key"))
	assert.Equal(t, "resumable", api.startHeader.Get("X-Goog-Upload-Protocol"))
	assert.Equal(t, "start", api.startHeader.Get("X-Goog-Upload-Command"))
	assert.Equal(t, "video/mp4", api.startHeader.Get("X-Goog-Upload-Header-Content-Type"))
	assert.Equal(t, "9", api.startHeader.Get("X-Goog-Upload-Header-Content-Length"))
	assert.Equal(t, "upload, finalize", api.finishHeader.Get("X-Goog-Upload-Command"))
	assert.Equal(t, "0", api.finishHeader.Get("X-Goog-Upload-Offset"))

	assert.Equal(t, "mp4-bytes", string(api.uploaded))
	assert.Equal(t, int64(len("mp4-bytes")), api.finishLength)
	assert.False(t, api.finishChunked, "video must be streamed with a known length")

	assert.Equal(t, "files/abc", file.Name)
	assert.Equal(t, "video/mp4", file.MIMEType)
	assert.Equal(t, FileStateActive, file.State)
	assert.GreaterOrEqual(t, api.polls.Load(), int32(2))

	resp, err := gw.Generate(context.Background(), file, "describe the video")
	require.NoError(t, err)

	var profile struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeContract(ExtractText(resp), &profile))
	assert.Equal(t, "Alice", profile.Name)

	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", api.genPath)
	parts := api.genParts(t)
	require.Len(t, parts, 2)
	fileData := parts[0]["file_data"].(map[string]interface{})
	assert.Equal(t, file.URI, fileData["file_uri"])
	assert.Equal(t, "video/mp4", fileData["mime_type"])
	assert.Equal(t, "describe the video", parts[1]["text"])
}

func TestLegacyGenerateRemoteError(t *testing.T) {
	api := newFakeGeminiAPI(t)
	api.genStatus = http.StatusInternalServerError
	gw := newLegacyForTest(t, api.server.URL)

	_, err := gw.Generate(context.Background(), &MediaFile{URI: "u", MIMEType: "video/mp4"}, "p")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "backend exploded")
}

func TestLegacyUploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"message":"API key not valid"}}`)
	}))
	defer server.Close()
	gw := newLegacyForTest(t, server.URL)

	_, err := gw.UploadMedia(context.Background(), writeVideo(t, "a.webm", "x"))
	assert.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestLegacyUploadNeverReady(t *testing.T) {
	api := newFakeGeminiAPI(t)
	api.readyAfter = 1 << 30
	gw, err := NewLegacyGeminiService(config.GeminiConfig{
		APIKey:       "test-key",
		BaseURL:      api.server.URL,
		PollInterval: time.Millisecond,
		ReadyTimeout: 30 * time.Millisecond,
	}, logger.NewNop())
	require.NoError(t, err)

	_, err = gw.UploadMedia(context.Background(), writeVideo(t, "intro.mp4", "x"))
	assert.ErrorIs(t, err, ErrUpload)
}

func TestNewLegacyRejectsBadBaseURL(t *testing.T) {
	_, err := NewLegacyGeminiService(config.GeminiConfig{APIKey: "k", BaseURL: "not-a-url"}, logger.NewNop())
	assert.Error(t, err)
}
