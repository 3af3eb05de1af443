package version

import (
	"path/filepath"
	"strings"

	"github.com/liangyou/nodeswitch/pkg/models"
)

// DetectCurrent 从 PATH 中找到第一个位于 nvm 安装目录下的条目，
// 解析出当前激活的版本。返回 nil 表示当前使用的是系统 node。
func DetectCurrent(path, nvmDir string) *models.Version {
	prefix := strings.TrimRight(nvmDir, "/") + "/"
	if prefix == "/" {
		return nil
	}

	for _, segment := range strings.Split(path, ":") {
		if !strings.HasPrefix(segment, prefix) {
			continue
		}
		// <root>/<version>/bin
		binDir := filepath.Clean(segment)
		versionDir := filepath.Dir(binDir)
		v, err := models.ParseVersion(filepath.Base(versionDir))
		if err != nil {
			return nil
		}
		located := v.WithLocation(versionDir)
		return &located
	}
	return nil
}
