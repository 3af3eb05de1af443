package models

import "path/filepath"

// RootDir 描述一个安装根目录，Dir 相对于 nvm 安装目录。
type RootDir struct {
	Dir     string `yaml:"dir"`     // 相对路径，"." 表示安装目录本身
	Runtime string `yaml:"runtime"` // node 或 io.js
	Pattern string `yaml:"pattern"` // 版本目录名的匹配模式，默认 v*
}

// Config 保存 nodeswitch 的运行配置，所有环境信息都通过它显式传递。
type Config struct {
	Home          string    // 用户主目录
	NVMDir        string    // nvm 安装目录，默认 ~/.nvm
	Path          string    // 调用方 shell 的 PATH
	Roots         []RootDir // 按优先级排列的安装根目录
	PinFileName   string    // 版本固定文件名，默认 .nvmrc
	MaxPinSize    int64     // 版本固定文件的最大字节数
	MaxAliasDepth int       // 别名递归解析的最大深度
	AliasCache    int       // 别名缓存条目数
}

const (
	DefaultPinFileName   = ".nvmrc"
	DefaultMaxPinSize    = 32
	DefaultMaxAliasDepth = 5
	DefaultAliasCache    = 64
	DefaultRootPattern   = "v*"
)

// DefaultRoots 返回 nvm 新旧两种目录布局下 node 与 io.js 的安装根目录。
func DefaultRoots() []RootDir {
	return []RootDir{
		{Dir: ".", Runtime: "node", Pattern: DefaultRootPattern},
		{Dir: filepath.Join("versions", "node"), Runtime: "node", Pattern: DefaultRootPattern},
		{Dir: "io.js", Runtime: "io.js", Pattern: DefaultRootPattern},
		{Dir: filepath.Join("versions", "io.js"), Runtime: "io.js", Pattern: DefaultRootPattern},
	}
}

// AbsRoot 返回根目录的绝对路径。
func (c Config) AbsRoot(root RootDir) string {
	return filepath.Join(c.NVMDir, root.Dir)
}

// AliasDir 返回别名目录。
func (c Config) AliasDir() string {
	return filepath.Join(c.NVMDir, "alias")
}

// WithDefaults 为未设置的字段填充默认值。
func (c Config) WithDefaults() Config {
	if c.NVMDir == "" && c.Home != "" {
		c.NVMDir = filepath.Join(c.Home, ".nvm")
	}
	if len(c.Roots) == 0 {
		c.Roots = DefaultRoots()
	} else {
		c.Roots = append([]RootDir(nil), c.Roots...)
	}
	for i := range c.Roots {
		if c.Roots[i].Pattern == "" {
			c.Roots[i].Pattern = DefaultRootPattern
		}
		if c.Roots[i].Runtime == "" {
			c.Roots[i].Runtime = "node"
		}
	}
	if c.PinFileName == "" {
		c.PinFileName = DefaultPinFileName
	}
	if c.MaxPinSize <= 0 {
		c.MaxPinSize = DefaultMaxPinSize
	}
	if c.MaxAliasDepth <= 0 {
		c.MaxAliasDepth = DefaultMaxAliasDepth
	}
	if c.AliasCache <= 0 {
		c.AliasCache = DefaultAliasCache
	}
	return c
}
