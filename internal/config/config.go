package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Log    LogConfig    `toml:"log"`
	Import ImportConfig `toml:"import"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // 相对数据目录
}

// ImportConfig 导入会话配置
type ImportConfig struct {
	SessionTTLMinutes int `toml:"session_ttl_minutes"`
	MaxUploadMB       int `toml:"max_upload_mb"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port: 20262,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join("logs", "starsoftflow.log"),
		},
		Import: ImportConfig{
			SessionTTLMinutes: 30,
			MaxUploadMB:       20,
		},
	}
}

// SessionTTL 导入会话闲置多久后被丢弃
func (c *AppConfig) SessionTTL() time.Duration {
	if c.Import.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Import.SessionTTLMinutes) * time.Minute
}

// MaxUploadBytes 上传文件大小上限
func (c *AppConfig) MaxUploadBytes() int64 {
	if c.Import.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(c.Import.MaxUploadMB) << 20
}

// SlogLevel 解析日志级别，无法识别时为 info
func (c *AppConfig) SlogLevel() slog.Level {
	return ParseLevel(c.Log.Level)
}

// ParseLevel 解析 debug/info/warn/error
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	server, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = server["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// Load 从指定路径加载配置；文件不存在时使用默认配置
func Load(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, fmt.Errorf("read %s: %w", path, err)
	}

	// 环境变量覆盖
	if v := os.Getenv("STARSOFTFLOW_DATA_DIR"); v != "" {
		cfg.Data.DataDir = v
	}
	if v := os.Getenv("STARSOFTFLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, info, nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	cfg, _, err := Load(DefaultPath())
	return cfg, err
}

// SaveConfig 保存配置
func SaveConfig(path string, cfg *AppConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径基于可执行文件目录
func ResolveDataDir(cfg *AppConfig) string {
	if filepath.IsAbs(cfg.Data.DataDir) {
		return cfg.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, cfg.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := ResolveDataDir(cfg)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"logs", "uploads"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}

// LogPath 日志文件路径
func LogPath(cfg *AppConfig, dataDir string) string {
	if filepath.IsAbs(cfg.Log.File) {
		return cfg.Log.File
	}
	return filepath.Join(dataDir, cfg.Log.File)
}

// DatabasePath SQLite 数据库文件路径
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "starsoftflow.db")
}
