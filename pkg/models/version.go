package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion 表示版本字符串无法解析。
var ErrInvalidVersion = errors.New("invalid version")

// Version 描述一个 Node.js 版本，minor 与 patch 可以缺省。
type Version struct {
	Major    uint64  // 主版本号
	Minor    *uint64 // 次版本号，nil 表示缺省
	Patch    *uint64 // 修订号，nil 表示缺省
	Location string  // 已定位到的安装目录（未定位时为空）
}

// NewVersion 按给定分量构造版本，多余的分量会被忽略。
func NewVersion(major uint64, rest ...uint64) Version {
	v := Version{Major: major}
	if len(rest) > 0 {
		minor := rest[0]
		v.Minor = &minor
	}
	if len(rest) > 1 {
		patch := rest[1]
		v.Patch = &patch
	}
	return v
}

// ParseVersion 解析 v<major>[.<minor>[.<patch>]] 形式的版本字符串。
// 第三个分量之后的内容不做校验。
func ParseVersion(text string) (Version, error) {
	raw := strings.TrimPrefix(text, "v")
	if raw == "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, text)
	}

	groups := strings.SplitN(raw, ".", 4)
	if len(groups) > 3 {
		groups = groups[:3]
	}

	values := make([]*uint64, 3)
	for i, group := range groups {
		if group == "" {
			continue
		}
		n, err := parseComponent(group)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, text)
		}
		values[i] = &n
	}

	if values[0] == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, text)
	}
	if values[1] == nil && values[2] != nil {
		return Version{}, fmt.Errorf("%w: patch without minor in %q", ErrInvalidVersion, text)
	}

	return Version{Major: *values[0], Minor: values[1], Patch: values[2]}, nil
}

func parseComponent(group string) (uint64, error) {
	for _, ch := range group {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("non-digit %q", ch)
		}
	}
	return strconv.ParseUint(group, 10, 64)
}

// MustParseVersion 与 ParseVersion 相同，解析失败时 panic，仅用于常量与测试。
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

// IsFull 判断 minor 与 patch 是否都已指定。
func (v Version) IsFull() bool {
	return v.Minor != nil && v.Patch != nil
}

// String 输出 v<major>[.<minor>[.<patch>]]。
func (v Version) String() string {
	var b strings.Builder
	b.WriteByte('v')
	b.WriteString(strconv.FormatUint(v.Major, 10))
	if v.Minor != nil {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(*v.Minor, 10))
		if v.Patch != nil {
			b.WriteByte('.')
			b.WriteString(strconv.FormatUint(*v.Patch, 10))
		}
	}
	return b.String()
}

// WithLocation 返回附带安装目录的副本。
func (v Version) WithLocation(location string) Version {
	v.Location = location
	return v
}

// Matches 判断两个版本是否兼容：主版本必须相等，
// 任一方缺省的分量视为通配。结果与参数顺序无关。
func (v Version) Matches(other Version) bool {
	if v.Major != other.Major {
		return false
	}
	if v.Minor == nil || other.Minor == nil {
		return true
	}
	if *v.Minor != *other.Minor {
		return false
	}
	if v.Patch == nil || other.Patch == nil {
		return true
	}
	return *v.Patch == *other.Patch
}

// Compare 按 (major, minor, patch) 比较两个版本，缺省分量小于任何已指定的值。
// 仅用于排序挑选候选版本。
func Compare(a, b Version) int {
	if c := compareUint(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareOptional(a.Minor, b.Minor); c != 0 {
		return c
	}
	return compareOptional(a.Patch, b.Patch)
}

func compareOptional(a, b *uint64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareUint(*a, *b)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// io.js 占用了 v1 到 v3 这段主版本号。
const (
	iojsMinMajor = 1
	iojsMaxMajor = 4
)

// IsIOJS 判断版本是否属于 io.js。
func (v Version) IsIOJS() bool {
	return v.Major >= iojsMinMajor && v.Major < iojsMaxMajor
}

// RuntimeName 返回用于提示信息的运行时名称。
func (v Version) RuntimeName() string {
	if v.IsIOJS() {
		return "io.js"
	}
	return "node"
}

// NodeVersion 是版本解析的结果：要么是一个具体版本，要么表示使用系统自带的 node。
type NodeVersion struct {
	Version *Version
	System  bool
}

// Managed 构造指向具体版本的解析结果。
func Managed(v Version) NodeVersion {
	return NodeVersion{Version: &v}
}

// SystemRuntime 构造表示系统 node 的解析结果。
func SystemRuntime() NodeVersion {
	return NodeVersion{System: true}
}

// SatisfiedBy 判断当前激活的版本是否已经满足解析结果。current 为 nil 表示系统 node。
func (n NodeVersion) SatisfiedBy(current *Version) bool {
	if n.System {
		return current == nil
	}
	if n.Version == nil || current == nil {
		return false
	}
	return n.Version.Matches(*current)
}

// String 返回解析结果的展示形式。
func (n NodeVersion) String() string {
	if n.System || n.Version == nil {
		return "system"
	}
	return n.Version.String()
}
