package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
)

const (
	VariantGenAI        = "genai"
	VariantLegacy       = "legacy"
	VariantUnconfigured = "unconfigured"
)

const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

// Gateway is the single entry point to the external video model.
type Gateway interface {
	UploadMedia(ctx context.Context, path string) (*MediaFile, error)
	Generate(ctx context.Context, file *MediaFile, prompt string) (*ModelResponse, error)
	Variant() string
}

// MediaFile is a handle to a video already uploaded to the model service.
type MediaFile struct {
	Name     string
	URI      string
	MIMEType string
	State    string
}

// ModelResponse holds the untouched reply of one Generate call. Exactly one
// field is set, depending on the client variant that produced it.
type ModelResponse struct {
	SDK *genai.GenerateContentResponse
	Raw gjson.Result
}

// DetectVideoMIME maps a file extension to the MIME type the model expects.
func DetectVideoMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/webm"
	}
}

// NewGateway picks the client variant once at startup. The genai SDK is
// preferred; the legacy REST client is used when the SDK cannot be built or
// when cfg.Client asks for it. Without an API key every call fails with
// ErrConfiguration.
func NewGateway(ctx context.Context, cfg config.GeminiConfig, log logger.Logger) Gateway {
	if cfg.APIKey == "" {
		log.Warn("gateway", "GEMINI_API_KEY not found in environment variables", nil)
		return &unconfiguredGateway{reason: "AI API key not configured"}
	}

	var gw Gateway
	if cfg.Client != VariantLegacy {
		sdk, err := NewGeminiService(ctx, cfg, log)
		if err == nil {
			log.Info("gateway", "Using genai client (preferred)", map[string]interface{}{"model": cfg.Model})
			gw = sdk
		} else {
			log.Warn("gateway", "genai client unavailable, falling back to legacy client", map[string]interface{}{"error": err.Error()})
		}
	}

	if gw == nil {
		legacy, err := NewLegacyGeminiService(cfg, log)
		if err != nil {
			log.Error("gateway", "No Gemini client available", map[string]interface{}{"error": err})
			return &unconfiguredGateway{reason: "no Gemini client available"}
		}
		log.Info("gateway", "Using legacy REST client", map[string]interface{}{"model": cfg.LegacyModel})
		gw = legacy
	}

	return NewLimitedGateway(gw, int64(cfg.MaxConcurrent))
}

type unconfiguredGateway struct {
	reason string
}

// UploadMedia implements Gateway.
func (g *unconfiguredGateway) UploadMedia(ctx context.Context, path string) (*MediaFile, error) {
	return nil, fmt.Errorf("%w: %s", ErrConfiguration, g.reason)
}

// Generate implements Gateway.
func (g *unconfiguredGateway) Generate(ctx context.Context, file *MediaFile, prompt string) (*ModelResponse, error) {
	return nil, fmt.Errorf("%w: %s", ErrConfiguration, g.reason)
}

// Variant implements Gateway.
func (g *unconfiguredGateway) Variant() string {
	return VariantUnconfigured
}

// limitedGateway caps the number of outbound model calls in flight.
type limitedGateway struct {
	next Gateway
	sem  *semaphore.Weighted
}

func NewLimitedGateway(next Gateway, maxConcurrent int64) Gateway {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &limitedGateway{
		next: next,
		sem:  semaphore.NewWeighted(maxConcurrent),
	}
}

// UploadMedia implements Gateway.
func (g *limitedGateway) UploadMedia(ctx context.Context, path string) (*MediaFile, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for a free slot: %w", ErrUpload, err)
	}
	defer g.sem.Release(1)

	return g.next.UploadMedia(ctx, path)
}

// Generate implements Gateway.
func (g *limitedGateway) Generate(ctx context.Context, file *MediaFile, prompt string) (*ModelResponse, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for a free slot: %w", ErrGeneration, err)
	}
	defer g.sem.Release(1)

	return g.next.Generate(ctx, file, prompt)
}

// Variant implements Gateway.
func (g *limitedGateway) Variant() string {
	return g.next.Variant()
}

// waitUntilActive polls the remote file state until the model can read it.
func waitUntilActive(ctx context.Context, file *MediaFile, interval, timeout time.Duration, getState func(ctx context.Context) (string, error)) error {
	if file.State == FileStateActive {
		return nil
	}
	if interval <= 0 {
		interval = time.Second
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		switch file.State {
		case FileStateActive:
			return nil
		case FileStateFailed:
			return fmt.Errorf("%w: file %s failed processing", ErrUpload, file.Name)
		}

		select {
		case <-pollCtx.Done():
			return fmt.Errorf("%w: file %s not ready after %s: %w", ErrUpload, file.Name, timeout, pollCtx.Err())
		case <-ticker.C:
		}

		state, err := getState(pollCtx)
		if err != nil {
			return fmt.Errorf("%w: failed to poll file %s: %w", ErrUpload, file.Name, err)
		}
		file.State = state
	}
}
