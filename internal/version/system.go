package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/liangyou/nodeswitch/internal/env"
	"github.com/liangyou/nodeswitch/pkg/models"
)

// ErrNoSystemRuntime 表示剥离 nvm 路径后的 PATH 中找不到对应程序。
var ErrNoSystemRuntime = errors.New("no system runtime found")

// OutputFunc 执行命令并返回标准输出。
type OutputFunc func(ctx context.Context, environ []string, name string, args ...string) ([]byte, error)

// SystemQuery 查询系统自带的 node 与 npm 版本。
type SystemQuery struct {
	cfg    models.Config
	output OutputFunc
}

// NewSystemQuery 创建 SystemQuery。
func NewSystemQuery(cfg models.Config) *SystemQuery {
	return &SystemQuery{cfg: cfg.WithDefaults(), output: commandOutput}
}

// NodeVersion 运行系统 node --version。找不到程序、退出码非零或输出无法解析时返回 nil。
func (q *SystemQuery) NodeVersion(ctx context.Context) *models.Version {
	systemPath := env.StripManagedPaths(q.cfg.Path, q.cfg.NVMDir)
	node, ok := lookPath("node", systemPath)
	if !ok {
		return nil
	}
	out, err := q.output(ctx, []string{"PATH=" + systemPath}, node, "--version")
	if err != nil {
		return nil
	}
	return parseReportedVersion(string(out))
}

// NPMVersion 读取 npm 的 package.json。managed 为 nil 时查询系统 npm。
func (q *SystemQuery) NPMVersion(managed *models.Version) (models.Version, error) {
	var npm string
	if managed != nil && managed.Location != "" {
		npm = filepath.Join(managed.Location, "bin", "npm")
	} else {
		found, ok := lookPath("npm", env.StripManagedPaths(q.cfg.Path, q.cfg.NVMDir))
		if !ok {
			return models.Version{}, fmt.Errorf("system: npm: %w", ErrNoSystemRuntime)
		}
		npm = found
	}

	resolved, err := filepath.EvalSymlinks(npm)
	if err != nil {
		return models.Version{}, fmt.Errorf("system: resolve npm: %w", err)
	}
	manifest := filepath.Join(filepath.Dir(filepath.Dir(resolved)), "package.json")
	data, err := os.ReadFile(manifest)
	if err != nil {
		return models.Version{}, fmt.Errorf("system: read npm manifest: %w", err)
	}

	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return models.Version{}, fmt.Errorf("system: decode npm manifest: %w", err)
	}
	v, err := models.ParseVersion(strings.TrimSpace(pkg.Version))
	if err != nil {
		return models.Version{}, fmt.Errorf("system: npm version: %w", err)
	}
	return v, nil
}

// parseReportedVersion 只接受形如 v18.2.0 的合法语义化版本。
func parseReportedVersion(out string) *models.Version {
	raw := strings.TrimSpace(out)
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	if !semver.IsValid(raw) {
		return nil
	}
	v, err := models.ParseVersion(raw)
	if err != nil {
		return nil
	}
	return &v
}

func lookPath(name, path string) (string, bool) {
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			continue
		}
		return candidate, true
	}
	return "", false
}

func commandOutput(ctx context.Context, environ []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), environ...)
	return cmd.Output()
}
