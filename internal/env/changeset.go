package env

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/liangyou/nodeswitch/pkg/models"
)

const (
	VarPath     = "PATH"
	VarNVMBin   = "NVM_BIN"
	VarNVMInc   = "NVM_INC"
	pathListSep = ":"
)

// Changeset 描述一次环境变量修改：设置或删除。
type Changeset struct {
	Name  string
	Value string
	Unset bool
}

// Set 构造设置变量的修改。
func Set(name, value string) Changeset {
	return Changeset{Name: name, Value: value}
}

// Unset 构造删除变量的修改。
func Unset(name string) Changeset {
	return Changeset{Name: name, Unset: true}
}

// StripManagedPaths 删除 PATH 中所有以 nvm 安装目录开头的条目，其余条目保持原有顺序。
func StripManagedPaths(path, nvmDir string) string {
	prefix := strings.TrimRight(nvmDir, "/")
	if prefix == "" {
		return path
	}
	segments := strings.Split(path, pathListSep)
	kept := segments[:0:0]
	for _, segment := range segments {
		if strings.HasPrefix(segment, prefix) {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, pathListSep)
}

// ComputeActivationChangeset 生成切换到 target 所需的修改，target 必须已定位到安装目录。
func ComputeActivationChangeset(target models.Version, path, nvmDir string) ([]Changeset, error) {
	if target.Location == "" {
		return nil, errors.New("env: target version has no install location")
	}
	binDir := filepath.Join(target.Location, "bin")
	stripped := StripManagedPaths(path, nvmDir)

	newPath := binDir
	if stripped != "" {
		newPath = fmt.Sprintf("%s%s%s", binDir, pathListSep, stripped)
	}

	return []Changeset{
		Set(VarPath, newPath),
		Set(VarNVMBin, binDir),
		Set(VarNVMInc, filepath.Join(target.Location, "include", "node")),
	}, nil
}

// ComputeRevertChangeset 生成恢复到系统 node 所需的修改。
func ComputeRevertChangeset(path, nvmDir string) []Changeset {
	return []Changeset{
		Set(VarPath, StripManagedPaths(path, nvmDir)),
		Unset(VarNVMBin),
		Unset(VarNVMInc),
	}
}
