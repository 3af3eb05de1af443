package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/liangyou/nodeswitch/pkg/models"
)

const (
	envConfigFile = "NODESWITCH_CONFIG"
	envEnvFile    = "NODESWITCH_ENV_FILE"
	defaultConfig = "nodeswitch.yaml"
)

// Options 控制配置的加载来源。
type Options struct {
	ConfigFile string              // 显式指定的 YAML 配置文件
	EnvFile    string              // 显式指定的 dotenv 文件
	Getenv     func(string) string // 环境变量读取函数，默认 os.Getenv
}

// File 对应 YAML 配置文件的结构。
type File struct {
	Roots         []models.RootDir `yaml:"roots"`
	PinFile       string           `yaml:"pin_file"`
	MaxPinSize    int64            `yaml:"max_pin_size"`
	MaxAliasDepth int              `yaml:"max_alias_depth"`
	AliasCache    int              `yaml:"alias_cache_size"`
}

// Load 按 环境变量 < dotenv 文件 的优先级读取路径类配置，再叠加 YAML 文件中的行为配置。
func Load(opts Options) (models.Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	envFile := firstNonEmpty(opts.EnvFile, getenv(envEnvFile))
	if envFile != "" {
		overlay, err := godotenv.Read(envFile)
		if err != nil {
			return models.Config{}, fmt.Errorf("config: read env file %s: %w", envFile, err)
		}
		base := getenv
		getenv = func(key string) string {
			if v, ok := overlay[key]; ok {
				return v
			}
			return base(key)
		}
	}

	cfg := models.Config{
		Home:   strings.TrimSpace(getenv("HOME")),
		NVMDir: strings.TrimSpace(getenv("NVM_DIR")),
		Path:   getenv("PATH"),
	}
	if cfg.Home == "" && cfg.NVMDir == "" {
		return models.Config{}, errors.New("config: neither HOME nor NVM_DIR is set")
	}
	cfg = cfg.WithDefaults()
	cfg.NVMDir = filepath.Clean(cfg.NVMDir)

	configFile := firstNonEmpty(opts.ConfigFile, getenv(envConfigFile))
	required := configFile != ""
	if !required {
		configFile = filepath.Join(cfg.NVMDir, defaultConfig)
	}

	file, err := readFile(configFile, required)
	if err != nil {
		return models.Config{}, err
	}
	return apply(cfg, file), nil
}

func readFile(path string, required bool) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	for _, root := range file.Roots {
		if filepath.IsAbs(root.Dir) || strings.Contains(root.Dir, "..") {
			return File{}, fmt.Errorf("config: root %q must be relative to the nvm dir", root.Dir)
		}
	}
	return file, nil
}

func apply(cfg models.Config, file File) models.Config {
	if len(file.Roots) > 0 {
		cfg.Roots = file.Roots
	}
	if file.PinFile != "" {
		cfg.PinFileName = file.PinFile
	}
	if file.MaxPinSize > 0 {
		cfg.MaxPinSize = file.MaxPinSize
	}
	if file.MaxAliasDepth > 0 {
		cfg.MaxAliasDepth = file.MaxAliasDepth
	}
	if file.AliasCache > 0 {
		cfg.AliasCache = file.AliasCache
	}
	return cfg.WithDefaults()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
