// Package storage provides filesystem-backed storage for uploaded datasets.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"sentinel/domain/core"
	"sentinel/ports"

	"github.com/google/uuid"
)

const copyChunkSize = 1 << 20

// LocalFileStorage implements FileStorage using the local filesystem
type LocalFileStorage struct {
	basePath string
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(basePath string) ports.FileStorage {
	return &LocalFileStorage{basePath: basePath}
}

// Store saves a file under a unique name derived from the original filename,
// hashing the content as it streams to disk
func (s *LocalFileStorage) Store(ctx context.Context, r io.Reader, filename string) (string, core.Hash, error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	ext := filepath.Ext(filename)
	baseName := filename[:len(filename)-len(ext)]
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(s.basePath, uniqueName)
	destFile, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	hasher := sha256.New()
	buf := make([]byte, copyChunkSize)
	if _, err := io.CopyBuffer(io.MultiWriter(destFile, hasher), r, buf); err != nil {
		os.Remove(filePath)
		return "", "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	return filePath, core.Hash(hex.EncodeToString(hasher.Sum(nil))), nil
}

// GetReader returns a reader for the stored file
func (s *LocalFileStorage) GetReader(ctx context.Context, filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file from storage
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}
