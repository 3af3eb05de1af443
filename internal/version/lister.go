package version

import (
	"context"
	"fmt"
	"slices"

	"github.com/liangyou/nodeswitch/pkg/models"
)

// Entry 是本地版本列表中的一项。
type Entry struct {
	Version   models.Version
	IsCurrent bool
}

// Lister 汇总本地已安装版本与当前激活版本。
type Lister struct {
	cfg     models.Config
	locator InstalledLocator
}

// NewLister 创建版本列表服务。
func NewLister(cfg models.Config, locator InstalledLocator) *Lister {
	return &Lister{cfg: cfg.WithDefaults(), locator: locator}
}

// LocalVersions 返回本地安装版本，按版本号降序排列并标记当前版本。
func (l *Lister) LocalVersions(ctx context.Context) ([]Entry, error) {
	if l.locator == nil {
		return nil, fmt.Errorf("lister: locator is required")
	}
	versions, err := l.locator.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("lister: %w", err)
	}

	current := l.CurrentVersion()
	entries := make([]Entry, 0, len(versions))
	for _, v := range versions {
		entries = append(entries, Entry{
			Version:   v,
			IsCurrent: current != nil && current.Location == v.Location,
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return models.Compare(b.Version, a.Version)
	})
	return entries, nil
}

// CurrentVersion 返回 PATH 中当前激活的 nvm 版本，nil 表示系统 node。
func (l *Lister) CurrentVersion() *models.Version {
	return DetectCurrent(l.cfg.Path, l.cfg.NVMDir)
}

// FormatLocalVersion 格式化本地版本输出，包含运行时名称与安装路径并标记当前版本。
func FormatLocalVersion(e Entry) string {
	marker := " "
	if e.IsCurrent {
		marker = "*"
	}
	pathInfo := e.Version.Location
	if pathInfo == "" {
		pathInfo = "(unknown path)"
	}
	return fmt.Sprintf("%s %-10s %-6s %s", marker, e.Version.String(), e.Version.RuntimeName(), pathInfo)
}
