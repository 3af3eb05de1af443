package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/liangyou/nodeswitch/pkg/models"
)

// ltsWildcard 是 nvm 在 alias/lts 下维护的"最新 LTS"别名，不代表具体的 LTS 线。
const ltsWildcard = "*"

// AliasStorage 定义别名文件的读取接口。
type AliasStorage interface {
	ReadAlias(name string) (string, error)
	LTSAliases(ctx context.Context) ([]string, error)
}

// FileStorage 从 nvm 安装目录读取别名文件，并缓存读取结果。
type FileStorage struct {
	aliasDir string
	cache    *lru.Cache[string, string]
	logger   *slog.Logger
}

// NewFileStorage 构造别名存储。
func NewFileStorage(cfg models.Config, logger *slog.Logger) (*FileStorage, error) {
	cfg = cfg.WithDefaults()
	if cfg.NVMDir == "" {
		return nil, errors.New("storage: nvm dir is not configured")
	}
	cache, err := lru.New[string, string](cfg.AliasCache)
	if err != nil {
		return nil, fmt.Errorf("storage: alias cache: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStorage{
		aliasDir: cfg.AliasDir(),
		cache:    cache,
		logger:   logger,
	}, nil
}

// ReadAlias 读取别名文件内容，name 可以是 default 或 lts/<name>。
func (s *FileStorage) ReadAlias(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("storage: invalid alias name %q", name)
	}
	if content, ok := s.cache.Get(name); ok {
		s.logger.Debug("alias cache hit", "alias", name)
		return content, nil
	}

	path := filepath.Join(s.aliasDir, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("storage: read alias %s: %w", name, err)
	}
	content := strings.TrimSpace(string(data))
	s.cache.Add(name, content)
	return content, nil
}

// LTSAliases 并发读取 alias/lts 下所有 LTS 别名的内容，跳过 * 与不可读的条目。
func (s *FileStorage) LTSAliases(ctx context.Context) ([]string, error) {
	dir := filepath.Join(s.aliasDir, "lts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: LTS aliases not found (invalid nvm install?): %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name() == ltsWildcard || entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	contents := make([]string, len(names))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			content, err := s.ReadAlias("lts/" + name)
			if err != nil {
				s.logger.Debug("skip unreadable LTS alias", "alias", name, "error", err)
				return nil
			}
			contents[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := contents[:0]
	for _, c := range contents {
		if c != "" {
			result = append(result, c)
		}
	}
	return result, nil
}

// FindPinFile 从 start 开始逐级向上查找版本固定文件，返回第一个不超过大小上限的文件。
// 找到超过上限的同名文件时停止查找。
func FindPinFile(start string, cfg models.Config) (string, bool) {
	cfg = cfg.WithDefaults()
	if !filepath.IsAbs(start) {
		return "", false
	}

	info, err := os.Stat(start)
	if err != nil {
		return "", false
	}
	dir := filepath.Clean(start)
	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, cfg.PinFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			if info.Size() <= cfg.MaxPinSize {
				return candidate, true
			}
			return "", false
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ReadPinFile 读取版本固定文件内容。
func ReadPinFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("storage: read pin file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
