package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for catalogue files under a base directory.
type fileLoader struct {
	baseDir string
	logger  zerolog.Logger
}

// NewFileLoader creates a loader that resolves paths relative to baseDir.
func NewFileLoader(baseDir string, logger zerolog.Logger) Loader {
	return &fileLoader{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped catalogue file from disk.
func (l *fileLoader) Load(ctx context.Context, path string) ([]Row, error) {
	fullPath := filepath.Join(l.baseDir, path)
	l.logger.Info().Str("file", fullPath).Msg("loading catalogue file")

	file, err := os.Open(fullPath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", fullPath).Msg("failed to open catalogue file")
		return nil, fmt.Errorf("failed to open catalogue file %s: %w", fullPath, err)
	}
	defer file.Close()

	rows, err := decode(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", fullPath).Msg("error reading catalogue file")
		return nil, fmt.Errorf("error reading catalogue file %s: %w", fullPath, err)
	}

	l.logger.Info().
		Str("file", fullPath).
		Int("rows", len(rows)).
		Msg("catalogue file loaded")

	return rows, nil
}
