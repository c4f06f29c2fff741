package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
)

// legacyGeminiService talks to the v1beta REST surface directly. It is the
// fallback when the SDK client cannot be built.
type legacyGeminiService struct {
	client         *resty.Client
	modelName      string
	pollInterval   time.Duration
	readyTimeout   time.Duration
	requestTimeout time.Duration
	log            logger.Logger
}

func NewLegacyGeminiService(cfg config.GeminiConfig, log logger.Logger) (Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid gemini base url %q", cfg.BaseURL)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetPreRequestHook(applyContentLength)

	return &legacyGeminiService{
		client:         client,
		modelName:      cfg.LegacyModel,
		pollInterval:   cfg.PollInterval,
		readyTimeout:   cfg.ReadyTimeout,
		requestTimeout: cfg.RequestTimeout,
		log:            log,
	}, nil
}

// UploadMedia implements Gateway using the resumable upload protocol.
func (g *legacyGeminiService) UploadMedia(ctx context.Context, path string) (*MediaFile, error) {
	video, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open staged file: %w", ErrUpload, err)
	}
	defer video.Close()

	info, err := video.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat staged file: %w", ErrUpload, err)
	}
	size := strconv.FormatInt(info.Size(), 10)
	mimeType := DetectVideoMIME(path)

	start, err := g.client.R().
		SetContext(ctx).
		SetHeader("X-Goog-Upload-Protocol", "resumable").
		SetHeader("X-Goog-Upload-Command", "start").
		SetHeader("X-Goog-Upload-Header-Content-Length", size).
		SetHeader("X-Goog-Upload-Header-Content-Type", mimeType).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"file": map[string]string{"display_name": filepath.Base(path)},
		}).
		Post("/upload/v1beta/files")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if start.IsError() {
		return nil, fmt.Errorf("%w: start returned %d: %s", ErrUpload, start.StatusCode(), remoteMessage(start))
	}

	uploadURL := start.Header().Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		return nil, fmt.Errorf("%w: missing upload url", ErrUpload)
	}

	finish, err := g.client.R().
		SetContext(ctx).
		SetHeader("X-Goog-Upload-Offset", "0").
		SetHeader("X-Goog-Upload-Command", "upload, finalize").
		SetHeader("Content-Type", mimeType).
		SetHeader("Content-Length", size).
		SetBody(video).
		Post(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if finish.IsError() {
		return nil, fmt.Errorf("%w: upload returned %d: %s", ErrUpload, finish.StatusCode(), remoteMessage(finish))
	}

	meta := gjson.GetBytes(finish.Body(), "file")
	file := &MediaFile{
		Name:     meta.Get("name").String(),
		URI:      meta.Get("uri").String(),
		MIMEType: meta.Get("mimeType").String(),
		State:    meta.Get("state").String(),
	}
	if file.Name == "" || file.URI == "" {
		return nil, fmt.Errorf("%w: upload response carried no file", ErrUpload)
	}
	if file.MIMEType == "" {
		file.MIMEType = mimeType
	}

	g.log.Debug("gemini_legacy", "Video uploaded", map[string]interface{}{"name": file.Name, "state": file.State})

	err = waitUntilActive(ctx, file, g.pollInterval, g.readyTimeout, func(ctx context.Context) (string, error) {
		resp, err := g.client.R().SetContext(ctx).Get("/v1beta/" + file.Name)
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode(), remoteMessage(resp))
		}
		return gjson.GetBytes(resp.Body(), "state").String(), nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Generate implements Gateway.
func (g *legacyGeminiService) Generate(ctx context.Context, file *MediaFile, prompt string) (*ModelResponse, error) {
	if g.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"contents": []map[string]interface{}{
				{
					"role": "user",
					"parts": []map[string]interface{}{
						{"file_data": map[string]string{"mime_type": file.MIMEType, "file_uri": file.URI}},
						{"text": prompt},
					},
				},
			},
		}).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", g.modelName))
	if err != nil {
		g.log.Error("gemini_legacy", "Gemini API error", map[string]interface{}{"error": err, "model": g.modelName})
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode(), remoteMessage(resp))
	}

	raw := gjson.ParseBytes(resp.Body())
	if !raw.IsObject() {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrGeneration)
	}

	return &ModelResponse{Raw: raw}, nil
}

// Variant implements Gateway.
func (g *legacyGeminiService) Variant() string {
	return VariantLegacy
}

// applyContentLength turns an explicit Content-Length header into the
// request length so streamed bodies are not sent chunked.
func applyContentLength(_ *resty.Client, req *http.Request) error {
	if req.ContentLength > 0 {
		return nil
	}
	if n, err := strconv.ParseInt(req.Header.Get("Content-Length"), 10, 64); err == nil && n > 0 {
		req.ContentLength = n
	}
	return nil
}

func remoteMessage(resp *resty.Response) string {
	if msg := gjson.GetBytes(resp.Body(), "error.message").String(); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode())
}
