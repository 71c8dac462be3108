package tenant

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "concierge/errors"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Extensions recognised as tenant configuration files, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Source produces a freshly loaded tenant.
type Source interface {
	Load(id string) (*Tenant, error)
}

// FileLoader reads tenant configuration from <dir>/<id>.<ext>.
type FileLoader struct {
	dir          string
	defaultModel string
	logger       *zap.Logger
}

func NewFileLoader(dir, defaultModel string, logger *zap.Logger) *FileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLoader{dir: dir, defaultModel: defaultModel, logger: logger}
}

// Load returns ErrInvalidInput for malformed ids, ErrNotFound when no file
// exists and ErrInvalidConfig when the file cannot be decoded.
func (l *FileLoader) Load(id string) (*Tenant, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: tenant id %q", apperrors.ErrInvalidInput, id)
	}

	path, err := l.find(id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(err, "read tenant file %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: tenant %s: %v", apperrors.ErrInvalidConfig, id, err)
	}

	t := New(id, cfg, l.defaultModel, l.logger)
	l.logger.Info("Loaded tenant configuration",
		zap.String("tenant_id", id),
		zap.String("path", path),
		zap.Int("faqs", len(t.Config.FAQs)),
		zap.Int("knowledge_facts", len(t.Config.Knowledge)))
	return t, nil
}

func (l *FileLoader) find(id string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(l.dir, id+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tenant %s", apperrors.ErrNotFound, id)
}
