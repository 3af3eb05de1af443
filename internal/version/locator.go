package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/liangyou/nodeswitch/pkg/models"
)

var (
	// ErrNotFound 表示没有已安装的版本满足约束。
	ErrNotFound = errors.New("version not found")
	// ErrNoRoots 表示所有安装根目录都无法读取。
	ErrNoRoots = errors.New("no installation roots readable")
)

// InstalledLocator 描述已安装版本的查询能力。
type InstalledLocator interface {
	ListInstalled(ctx context.Context) ([]models.Version, error)
	FindInstalled(ctx context.Context, target models.Version) (models.Version, error)
}

// Locator 扫描 nvm 的各个安装根目录，定位已安装的 node 版本。
type Locator struct {
	cfg    models.Config
	logger *slog.Logger
}

// NewLocator 创建 Locator。
func NewLocator(cfg models.Config, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Locator{cfg: cfg.WithDefaults(), logger: logger}
}

// ListInstalled 并发读取所有根目录，按根目录顺序拼接结果，不做排序。
func (l *Locator) ListInstalled(ctx context.Context) ([]models.Version, error) {
	roots := l.cfg.Roots
	found := make([][]models.Version, len(roots))
	readable := make([]bool, len(roots))

	g, _ := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			versions, err := l.scanRoot(root)
			if err != nil {
				l.logger.Debug("skip unreadable root", "root", l.cfg.AbsRoot(root), "error", err)
				return nil
			}
			found[i] = versions
			readable[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(roots) > 0 && !slices.Contains(readable, true) {
		return nil, fmt.Errorf("locator: %w under %s", ErrNoRoots, l.cfg.NVMDir)
	}

	versions := []models.Version{}
	for _, batch := range found {
		versions = append(versions, batch...)
	}
	return versions, nil
}

func (l *Locator) scanRoot(root models.RootDir) ([]models.Version, error) {
	dir := l.cfg.AbsRoot(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var versions []models.Version
	for _, entry := range entries {
		name := entry.Name()
		if ok, err := doublestar.Match(root.Pattern, name); err != nil || !ok {
			continue
		}
		full := filepath.Join(dir, name)
		if !isDir(entry, full) {
			continue
		}
		v, err := models.ParseVersion(name)
		if err != nil {
			continue
		}
		versions = append(versions, v.WithLocation(full))
	}
	return versions, nil
}

// FindInstalled 查找满足 target 的已安装版本。完整版本直接按路径检查，
// 部分版本则在所有已安装版本中挑选最新的匹配项。
func (l *Locator) FindInstalled(ctx context.Context, target models.Version) (models.Version, error) {
	if target.IsFull() {
		return l.findExact(ctx, target)
	}

	versions, err := l.ListInstalled(ctx)
	if err != nil {
		return models.Version{}, err
	}
	best, ok := Newest(versions, func(v models.Version) bool { return target.Matches(v) })
	if !ok {
		return models.Version{}, fmt.Errorf("locator: couldn't find version %s: %w", target, ErrNotFound)
	}
	return best, nil
}

func (l *Locator) findExact(ctx context.Context, target models.Version) (models.Version, error) {
	name := target.String()
	roots := l.cfg.Roots
	exists := make([]bool, len(roots))

	g, _ := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			info, err := os.Stat(filepath.Join(l.cfg.AbsRoot(root), name))
			exists[i] = err == nil && info.IsDir()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Version{}, err
	}

	for i, root := range roots {
		if exists[i] {
			return target.WithLocation(filepath.Join(l.cfg.AbsRoot(root), name)), nil
		}
	}
	return models.Version{}, fmt.Errorf("locator: couldn't find version %s: %w", target, ErrNotFound)
}

// Newest 在满足 keep 的版本中返回最大的一个。
func Newest(versions []models.Version, keep func(models.Version) bool) (models.Version, bool) {
	candidates := make([]models.Version, 0, len(versions))
	for _, v := range versions {
		if keep == nil || keep(v) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return models.Version{}, false
	}
	slices.SortStableFunc(candidates, models.Compare)
	return candidates[len(candidates)-1], true
}

func isDir(entry os.DirEntry, full string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}
