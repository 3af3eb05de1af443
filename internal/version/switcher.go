package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liangyou/nodeswitch/internal/env"
	"github.com/liangyou/nodeswitch/internal/storage"
	"github.com/liangyou/nodeswitch/pkg/models"
)

// ErrNoPin 表示既没有找到 .nvmrc，default 别名也无法解析。
var ErrNoPin = errors.New("no pin file and no usable default alias")

// Outcome 描述一次切换的结果。Changesets 为空表示无需修改环境。
type Outcome struct {
	PinPath    string
	Pin        string
	Target     models.NodeVersion
	Resolved   *models.Version
	Current    *models.Version
	Changesets []env.Changeset
}

// Changed 判断是否需要输出脚本。
func (o Outcome) Changed() bool {
	return len(o.Changesets) > 0
}

// Switcher 串联版本解析、定位、安装与环境修改的计算。
type Switcher struct {
	cfg       models.Config
	resolver  PinResolver
	locator   InstalledLocator
	installer VersionInstaller
	logger    *slog.Logger
}

// NewSwitcher 创建 Switcher，installer 为 nil 时缺失的版本直接报错。
func NewSwitcher(cfg models.Config, resolver PinResolver, locator InstalledLocator, installer VersionInstaller, logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Switcher{
		cfg:       cfg.WithDefaults(),
		resolver:  resolver,
		locator:   locator,
		installer: installer,
		logger:    logger,
	}
}

// Auto 从 startDir 向上查找 .nvmrc；找不到时回退到 default 别名。
func (s *Switcher) Auto(ctx context.Context, startDir string) (Outcome, error) {
	if pinPath, ok := storage.FindPinFile(startDir, s.cfg); ok {
		pin, err := storage.ReadPinFile(pinPath)
		if err != nil {
			return Outcome{}, err
		}
		outcome, err := s.Use(ctx, pin)
		outcome.PinPath = pinPath
		return outcome, err
	}

	outcome, err := s.Use(ctx, "default")
	if err != nil {
		s.logger.Debug("default alias unusable", "error", err)
		return Outcome{}, fmt.Errorf("switcher: %w: %w", ErrNoPin, err)
	}
	return outcome, nil
}

// Use 解析 pin 并计算切换所需的环境修改。当前版本已满足时不产生修改。
func (s *Switcher) Use(ctx context.Context, pin string) (Outcome, error) {
	if s.resolver == nil || s.locator == nil {
		return Outcome{}, errors.New("switcher: missing dependencies")
	}

	outcome := Outcome{
		Pin:     pin,
		Current: DetectCurrent(s.cfg.Path, s.cfg.NVMDir),
	}

	target, err := s.resolver.Resolve(ctx, pin)
	if err != nil {
		return outcome, err
	}
	outcome.Target = target

	if target.SatisfiedBy(outcome.Current) {
		s.logger.Debug("current version already satisfies pin", "pin", pin, "target", target.String())
		return outcome, nil
	}

	if target.System {
		outcome.Changesets = env.ComputeRevertChangeset(s.cfg.Path, s.cfg.NVMDir)
		return outcome, nil
	}

	located, err := s.locate(ctx, *target.Version)
	if err != nil {
		return outcome, err
	}
	outcome.Resolved = &located

	changes, err := env.ComputeActivationChangeset(located, s.cfg.Path, s.cfg.NVMDir)
	if err != nil {
		return outcome, err
	}
	outcome.Changesets = changes
	return outcome, nil
}

func (s *Switcher) locate(ctx context.Context, target models.Version) (models.Version, error) {
	if target.Location != "" {
		return target, nil
	}

	located, err := s.locator.FindInstalled(ctx, target)
	if err == nil {
		return located, nil
	}
	if !errors.Is(err, ErrNotFound) || s.installer == nil {
		return models.Version{}, err
	}

	s.logger.Info("version not installed, installing", "version", target.String())
	if err := s.installer.Install(ctx, target.String()); err != nil {
		return models.Version{}, err
	}
	located, err = s.locator.FindInstalled(ctx, target)
	if err != nil {
		return models.Version{}, fmt.Errorf("switcher: installed %s but could not locate it: %w", target, err)
	}
	return located, nil
}
