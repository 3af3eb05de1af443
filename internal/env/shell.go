package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	blockStart = "# >>> nodeswitch initialize >>>"
	blockEnd   = "# <<< nodeswitch initialize <<<"
)

// ShellManager 检测当前 shell，生成并写入目录切换时自动执行的钩子。
type ShellManager struct {
	binary string

	homeFn func() (string, error)
	envFn  func(string) string
}

// NewShellManager 构造 ShellManager，binary 为钩子中调用的 nodeswitch 路径。
func NewShellManager(binary string, envFn func(string) string) *ShellManager {
	if binary == "" {
		binary = "nodeswitch"
	}
	if envFn == nil {
		envFn = os.Getenv
	}
	return &ShellManager{
		binary: binary,
		homeFn: os.UserHomeDir,
		envFn:  envFn,
	}
}

// DetectShell 根据 SHELL 环境变量推断当前 shell。
func (m *ShellManager) DetectShell() (string, error) {
	shellPath := m.envFn("SHELL")
	if shellPath == "" {
		shellPath = "bash"
	}
	shell := filepath.Base(shellPath)
	switch shell {
	case "bash", "zsh":
		return shell, nil
	default:
		return "", fmt.Errorf("env: unsupported shell %q", shell)
	}
}

// Hook 返回指定 shell 的钩子脚本。
func (m *ShellManager) Hook(shellType string) (string, error) {
	bin := EscapeValue(m.binary)
	switch shellType {
	case "bash":
		return strings.Join([]string{
			"_nodeswitch_hook() {",
			"  if [ \"$_NODESWITCH_LAST_PWD\" != \"$PWD\" ]; then",
			"    _NODESWITCH_LAST_PWD=\"$PWD\"",
			"    eval \"$(" + bin + " use)\"",
			"  fi",
			"}",
			"case \";${PROMPT_COMMAND:-};\" in",
			"  *\";_nodeswitch_hook;\"*) ;;",
			"  *) PROMPT_COMMAND=\"_nodeswitch_hook${PROMPT_COMMAND:+;$PROMPT_COMMAND}\" ;;",
			"esac",
		}, "\n"), nil
	case "zsh":
		return strings.Join([]string{
			"_nodeswitch_hook() {",
			"  eval \"$(" + bin + " use)\"",
			"}",
			"autoload -U add-zsh-hook",
			"add-zsh-hook chpwd _nodeswitch_hook",
			"_nodeswitch_hook",
		}, "\n"), nil
	default:
		return "", fmt.Errorf("env: unsupported shell %q", shellType)
	}
}

// UpdateShellConfig 将钩子写入 shell 配置文件，已有的钩子块会被替换。
func (m *ShellManager) UpdateShellConfig(shellType string) (string, error) {
	hook, err := m.Hook(shellType)
	if err != nil {
		return "", err
	}

	configPath, err := m.configFileForShell(shellType)
	if err != nil {
		return "", err
	}

	var existing []byte
	if data, err := os.ReadFile(configPath); err == nil {
		existing = data
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("env: read config: %w", err)
	}

	block := strings.Join([]string{blockStart, hook, blockEnd}, "\n")
	merged := mergeConfig(string(existing), block)
	if err := os.WriteFile(configPath, []byte(merged), 0o644); err != nil {
		return "", fmt.Errorf("env: write config: %w", err)
	}
	return configPath, nil
}

func (m *ShellManager) configFileForShell(shellType string) (string, error) {
	home, err := m.homeFn()
	if err != nil {
		return "", fmt.Errorf("env: home dir: %w", err)
	}

	switch shellType {
	case "bash":
		path := filepath.Join(home, ".bashrc")
		if fileExists(path) {
			return path, nil
		}
		return filepath.Join(home, ".bash_profile"), nil
	case "zsh":
		return filepath.Join(home, ".zshrc"), nil
	default:
		return "", fmt.Errorf("env: unsupported shell %q", shellType)
	}
}

func mergeConfig(existing, block string) string {
	cleaned := strings.TrimRight(removeExistingBlock(existing), "\n")
	if strings.TrimSpace(cleaned) == "" {
		return block + "\n"
	}
	return cleaned + "\n\n" + block + "\n"
}

func removeExistingBlock(content string) string {
	var kept []string
	skipping := false
	for _, line := range strings.Split(content, "\n") {
		switch strings.TrimSpace(line) {
		case blockStart:
			skipping = true
			continue
		case blockEnd:
			skipping = false
			continue
		}
		if skipping || (line == "" && len(kept) == 0) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Trim(strings.Join(kept, "\n"), "\n")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
