package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/liangyou/nodeswitch/internal/storage"
	"github.com/liangyou/nodeswitch/pkg/models"
)

const ltsPrefix = "lts/"

var (
	// ErrDepthExceeded 表示别名链过长或存在循环。
	ErrDepthExceeded = errors.New("max recursion depth reached")
	// ErrInvalidPin 表示版本固定文本无法识别。
	ErrInvalidPin = errors.New("invalid pin")
)

// PinResolver 描述版本固定文本的解析能力。
type PinResolver interface {
	Resolve(ctx context.Context, text string) (models.NodeVersion, error)
}

// Resolver 将 .nvmrc 内容解析为具体版本或系统 node。
type Resolver struct {
	aliases  storage.AliasStorage
	locator  InstalledLocator
	maxDepth int
	logger   *slog.Logger
}

// NewResolver 创建 Resolver。
func NewResolver(aliases storage.AliasStorage, locator InstalledLocator, cfg models.Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		aliases:  aliases,
		locator:  locator,
		maxDepth: cfg.WithDefaults().MaxAliasDepth,
		logger:   logger,
	}
}

// Resolve 从深度 0 开始解析。
func (r *Resolver) Resolve(ctx context.Context, text string) (models.NodeVersion, error) {
	return r.ResolvePin(ctx, text, 0)
}

// ResolvePin 解析版本固定文本。别名文件的内容本身也是版本固定文本，
// 因此别名通过递归解析，depth 超过上限时返回 ErrDepthExceeded。
func (r *Resolver) ResolvePin(ctx context.Context, text string, depth int) (models.NodeVersion, error) {
	if depth > r.maxDepth {
		return models.NodeVersion{}, fmt.Errorf("resolver: %w (%d)", ErrDepthExceeded, r.maxDepth)
	}
	if r.aliases == nil || r.locator == nil {
		return models.NodeVersion{}, errors.New("resolver: missing dependencies")
	}

	pin := strings.TrimSpace(text)
	r.logger.Debug("resolve pin", "pin", pin, "depth", depth)

	if rest, ok := strings.CutPrefix(pin, ltsPrefix); ok {
		if offset, relative := strings.CutPrefix(rest, "-"); relative {
			return r.resolveRelativeLTS(ctx, offset)
		}
		content, err := r.aliases.ReadAlias(ltsPrefix + strings.TrimSpace(rest))
		if err != nil {
			return models.NodeVersion{}, fmt.Errorf("resolver: %w", err)
		}
		return r.ResolvePin(ctx, content, depth+1)
	}

	switch pin {
	case "node", "stable":
		versions, err := r.locator.ListInstalled(ctx)
		if err != nil {
			return models.NodeVersion{}, fmt.Errorf("resolver: %w", err)
		}
		newest, ok := Newest(versions, nil)
		if !ok {
			return models.NodeVersion{}, fmt.Errorf("resolver: no versions installed: %w", ErrNotFound)
		}
		return models.Managed(newest), nil
	case "default":
		content, err := r.aliases.ReadAlias("default")
		if err != nil {
			return models.NodeVersion{}, fmt.Errorf("resolver: %w", err)
		}
		return r.ResolvePin(ctx, content, depth+1)
	case "system":
		return models.SystemRuntime(), nil
	}

	v, err := models.ParseVersion(pin)
	if err != nil {
		return models.NodeVersion{}, fmt.Errorf("resolver: %w %q: %w", ErrInvalidPin, pin, err)
	}
	return models.Managed(v), nil
}

// resolveRelativeLTS 处理 lts/-N，0 表示最新的 LTS 线。
func (r *Resolver) resolveRelativeLTS(ctx context.Context, raw string) (models.NodeVersion, error) {
	offset, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || offset < 0 {
		return models.NodeVersion{}, fmt.Errorf("resolver: %w: relative LTS offset %q", ErrInvalidPin, raw)
	}

	contents, err := r.aliases.LTSAliases(ctx)
	if err != nil {
		return models.NodeVersion{}, fmt.Errorf("resolver: %w", err)
	}

	lines := make([]models.Version, 0, len(contents))
	for _, content := range contents {
		v, err := models.ParseVersion(content)
		if err != nil {
			r.logger.Debug("skip unparsable LTS alias", "content", content)
			continue
		}
		lines = append(lines, v)
	}
	slices.SortStableFunc(lines, func(a, b models.Version) int { return models.Compare(b, a) })

	if offset >= len(lines) {
		return models.NodeVersion{}, fmt.Errorf("resolver: relative LTS version lts/-%d: %w", offset, ErrNotFound)
	}
	return models.Managed(lines[offset]), nil
}
