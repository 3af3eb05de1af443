package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/liangyou/nodeswitch/pkg/models"
)

var supportedOS = map[string]struct{}{
	"linux":   {},
	"darwin":  {},
	"freebsd": {},
}

// Checker 校验当前系统是否满足 nodeswitch 的运行要求。
type Checker struct {
	cfg  models.Config
	goos func() string
}

// NewChecker 创建平台检测器。
func NewChecker(cfg models.Config) *Checker {
	return &Checker{
		cfg:  cfg,
		goos: func() string { return runtime.GOOS },
	}
}

// Validate 校验操作系统以及 nvm 安装目录是否可读。
func (c *Checker) Validate() error {
	if _, ok := supportedOS[c.goos()]; !ok {
		return fmt.Errorf("platform: unsupported operating system %s", c.goos())
	}

	if c.cfg.NVMDir == "" {
		return errors.New("platform: nvm dir is not configured")
	}
	info, err := os.Stat(c.cfg.NVMDir)
	if err != nil {
		return fmt.Errorf("platform: cannot access nvm dir %s: %w", c.cfg.NVMDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("platform: nvm dir %s is not a directory", c.cfg.NVMDir)
	}
	if _, err := os.ReadDir(c.cfg.NVMDir); err != nil {
		return fmt.Errorf("platform: cannot read nvm dir %s: %w", c.cfg.NVMDir, err)
	}
	return nil
}
