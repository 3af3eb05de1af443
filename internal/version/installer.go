package version

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/liangyou/nodeswitch/pkg/models"
)

// ErrInstallFailed 表示 nvm install 执行失败。
var ErrInstallFailed = errors.New("install failed")

const installScript = `
source "$1";
nvm install "$2";
`

// VersionInstaller 描述安装缺失版本的能力。
type VersionInstaller interface {
	Install(ctx context.Context, specifier string) error
}

// CommandRunner 执行外部命令，便于测试替换。
type CommandRunner func(ctx context.Context, stdout io.Writer, name string, args ...string) error

// Installer 通过 nvm.sh 在子进程中安装 node 版本。
type Installer struct {
	nvmScript string
	stderr    io.Writer
	run       CommandRunner
	logger    *slog.Logger
}

// NewInstaller 创建 Installer，stderr 用于透传 nvm 的进度输出。
func NewInstaller(cfg models.Config, stderr io.Writer, logger *slog.Logger) *Installer {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	i := &Installer{
		nvmScript: filepath.Join(cfg.NVMDir, "nvm.sh"),
		stderr:    stderr,
		logger:    logger,
	}
	i.run = i.execCommand
	return i
}

// Install 执行 nvm install <specifier>，stdout 被丢弃，避免污染要被 eval 的脚本。
func (i *Installer) Install(ctx context.Context, specifier string) error {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return errors.New("installer: version is required")
	}

	i.logger.Debug("running nvm install", "script", i.nvmScript, "version", specifier)
	if err := i.run(ctx, io.Discard, "bash", "-c", installScript, "--", i.nvmScript, specifier); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("installer: version %s might not exist: %w", specifier, ErrInstallFailed)
		}
		return fmt.Errorf("installer: failed to run nvm install: %w: %w", ErrInstallFailed, err)
	}
	return nil
}

func (i *Installer) execCommand(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = i.stderr
	return cmd.Run()
}
