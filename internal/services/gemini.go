package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiService struct {
	client         *genai.Client
	modelName      string
	pollInterval   time.Duration
	readyTimeout   time.Duration
	requestTimeout time.Duration
	log            logger.Logger
}

// NewGeminiService builds the preferred gateway variant on top of the genai SDK.
func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, log logger.Logger) (Gateway, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" && base != defaultGeminiBaseURL {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:         client,
		modelName:      cfg.Model,
		pollInterval:   cfg.PollInterval,
		readyTimeout:   cfg.ReadyTimeout,
		requestTimeout: cfg.RequestTimeout,
		log:            log,
	}, nil
}

// UploadMedia implements Gateway.
func (g *geminiService) UploadMedia(ctx context.Context, path string) (*MediaFile, error) {
	mimeType := DetectVideoMIME(path)

	uploaded, err := g.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if uploaded == nil {
		return nil, fmt.Errorf("%w: empty upload response", ErrUpload)
	}

	file := &MediaFile{
		Name:     uploaded.Name,
		URI:      uploaded.URI,
		MIMEType: uploaded.MIMEType,
		State:    string(uploaded.State),
	}
	if file.MIMEType == "" {
		file.MIMEType = mimeType
	}

	g.log.Debug("gemini", "Video uploaded", map[string]interface{}{"name": file.Name, "state": file.State})

	err = waitUntilActive(ctx, file, g.pollInterval, g.readyTimeout, func(ctx context.Context) (string, error) {
		f, err := g.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return "", err
		}
		return string(f.State), nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Generate implements Gateway.
func (g *geminiService) Generate(ctx context.Context, file *MediaFile, prompt string) (*ModelResponse, error) {
	if g.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, file.MIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		g.log.Error("gemini", "Gemini API error", map[string]interface{}{"error": err, "model": g.modelName})
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no response generated (nil response)", ErrGeneration)
	}

	return &ModelResponse{SDK: resp}, nil
}

// Variant implements Gateway.
func (g *geminiService) Variant() string {
	return VariantGenAI
}
