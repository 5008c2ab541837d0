package source

import (
	"context"
	"fmt"
	"os"

	"user-search/internal/domain"
)

// FileSource - JSON файл с массивом записей {"email", "number"}
type FileSource struct {
	path string
}

// NewFileSource создает источник для файла path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load читает и разбирает файл при каждом вызове
func (s *FileSource) Load(ctx context.Context) ([]domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read data file %s: %w", s.path, err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", s.path, err)
	}
	return records, nil
}
