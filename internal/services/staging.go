package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const defaultVideoExt = ".webm"

type StagingService interface {
	Stage(ctx context.Context, r io.Reader, filename string) (string, error)
	Persist(transientPath, sessionID, slot string) (string, error)
	Remove(transientPath string) error
	EnsureUploadDir() error
}

type stagingService struct {
	uploadPath string
	stagingDir string
}

func NewStagingService(uploadPath, stagingDir string) StagingService {
	return &stagingService{
		uploadPath: uploadPath,
		stagingDir: stagingDir,
	}
}

// EnsureUploadDir implements StagingService.
func (s *stagingService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// Stage implements StagingService.
func (s *stagingService) Stage(ctx context.Context, r io.Reader, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStaging, err)
	}

	dst, err := os.CreateTemp(s.stagingDir, "interview-*"+videoExt(filename))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create temp file: %w", ErrStaging, err)
	}
	path := dst.Name()

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: failed to write upload: %w", ErrStaging, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: failed to close temp file: %w", ErrStaging, err)
	}

	return path, nil
}

// Persist implements StagingService. The durable copy lands at
// <uploadPath>/<sessionID>/<slot><ext> and is never removed here.
func (s *stagingService) Persist(transientPath, sessionID, slot string) (string, error) {
	dir, err := safeComponent(sessionID)
	if err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	name, err := safeComponent(slot)
	if err != nil {
		return "", fmt.Errorf("invalid slot: %w", err)
	}

	targetDir := filepath.Join(s.uploadPath, dir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	src, err := os.Open(transientPath)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer src.Close()

	target := filepath.Join(targetDir, name+videoExt(transientPath))
	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to persist file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to persist file: %w", err)
	}

	return target, nil
}

// Remove implements StagingService.
func (s *stagingService) Remove(transientPath string) error {
	if err := os.Remove(transientPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func videoExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		return defaultVideoExt
	}
	return ext
}

// safeComponent rejects anything that is not a single plain path element.
func safeComponent(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("unsafe path component %q", name)
	}
	return name, nil
}
