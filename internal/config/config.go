package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// XLSXMIMEType xlsx 文件的 MIME 类型
const XLSXMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Upload    UploadConfig    `toml:"upload"`
	Checklist ChecklistConfig `toml:"checklist"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir  string `toml:"data_dir"`
	AuditLog bool   `toml:"audit_log"` // 是否记录上传审计日志（SQLite）
}

// UploadConfig 上传校验配置
type UploadConfig struct {
	MaxBytes          int64    `toml:"max_bytes"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	AllowedMIMETypes  []string `toml:"allowed_mime_types"`
	TempDir           string   `toml:"temp_dir"` // 为空时使用 data/uploads
}

// ChecklistConfig 检查清单配置
type ChecklistConfig struct {
	Path string `toml:"path"` // 为空时使用内置清单
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json | console
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	Path          string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    8080,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:  "data",
			AuditLog: true,
		},
		Upload: UploadConfig{
			MaxBytes:          10 * 1024 * 1024,
			AllowedExtensions: []string{".xlsx", ".xls"},
			AllowedMIMETypes:  []string{XLSXMIMEType},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
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

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadConfigFrom(filepath.Join(exeDir, "config.toml"))
}

// LoadConfigFrom 从指定路径加载配置；文件不存在时返回默认配置
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnvOverrides(config)
	return config, info, nil
}

// applyEnvOverrides 环境变量覆盖（用于容器 / 本地运行）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("PBA_CHECKLIST_PATH"); v != "" {
		config.Checklist.Path = v
	}
	if v := os.Getenv("PBA_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("PBA_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir 数据目录的绝对路径；相对路径相对于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及 uploads 子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// UploadTempDir 上传暂存目录
func UploadTempDir(config *AppConfig) string {
	if config.Upload.TempDir != "" {
		return config.Upload.TempDir
	}
	return filepath.Join(ResolveDataDir(config), "uploads")
}
