package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
)

// 环境变量
const (
	EnvWorkbook = "PANTAUHARGA_WORKBOOK"
	EnvDataDir  = "PANTAUHARGA_DATA_DIR"
	EnvLogLevel = "PANTAUHARGA_LOG_LEVEL"
)

// 存储后端
const (
	StoreCSV    = "csv"
	StoreSQLite = "sqlite"
)

// ConfigFileName 配置文件名，位于可执行文件同目录
const ConfigFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Source SourceConfig `toml:"source"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir   string `toml:"data_dir"`
	InputFile string `toml:"input_file"`
	Store     string `toml:"store"`
	Database  string `toml:"database"`
}

// SourceConfig 历史数据工作簿配置
type SourceConfig struct {
	Workbook      string            `toml:"workbook"`
	ChoiceSheet   string            `toml:"choice_sheet"`
	DailySheets   []string          `toml:"daily_sheets"`
	ColumnAliases map[string]string `toml:"column_aliases"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DataDir:   "data",
			InputFile: "data_input.csv",
			Store:     StoreCSV,
			Database:  "pantauharga.db",
		},
		Source: SourceConfig{
			Workbook:    "2 Pemantauan Harga 2026 (1).xlsx",
			ChoiceSheet: "choice",
			DailySheets: []string{"jan26", "feb26"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
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

// BaseDir 相对路径的基准目录，无法获取可执行文件目录时使用当前目录
func BaseDir() string {
	exeDir, err := GetExeDir()
	if err != nil || exeDir == "" {
		return "."
	}
	return exeDir
}

// ResolvePath 相对路径按可执行文件目录解析
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(BaseDir(), p)
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(filepath.Join(BaseDir(), ConfigFileName))
}

// LoadConfigFrom 从指定文件加载配置；文件不存在时使用默认配置，环境变量总是生效
func LoadConfigFrom(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Found = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, eris.Wrapf(err, "parse %s", path)
		}
	case os.IsNotExist(err):
		// 使用默认配置
	default:
		return nil, info, eris.Wrapf(err, "read %s", path)
	}

	applyEnv(config)
	config.normalize()
	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

func applyEnv(config *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvWorkbook)); v != "" {
		config.Source.Workbook = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		config.Data.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}
}

// normalize 补齐被配置文件清空的字段
func (c *AppConfig) normalize() {
	def := DefaultConfig()
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Data.DataDir == "" {
		c.Data.DataDir = def.Data.DataDir
	}
	if c.Data.InputFile == "" {
		c.Data.InputFile = def.Data.InputFile
	}
	c.Data.Store = strings.ToLower(strings.TrimSpace(c.Data.Store))
	if c.Data.Store == "" {
		c.Data.Store = def.Data.Store
	}
	if c.Data.Database == "" {
		c.Data.Database = def.Data.Database
	}
	if c.Source.ChoiceSheet == "" {
		c.Source.ChoiceSheet = def.Source.ChoiceSheet
	}
	if len(c.Source.DailySheets) == 0 {
		c.Source.DailySheets = def.Source.DailySheets
	}
}

// SaveConfig 保存配置到可执行文件同目录的 config.toml
func SaveConfig(config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return eris.Wrap(err, "marshal config")
	}
	return os.WriteFile(filepath.Join(BaseDir(), ConfigFileName), data, 0644)
}

// DataDir 数据目录绝对路径
func DataDir(config *AppConfig) string {
	return ResolvePath(config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及 exports 子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := DataDir(config)
	if err := os.MkdirAll(filepath.Join(dataDir, "exports"), 0755); err != nil {
		return "", eris.Wrapf(err, "create data dir %s", dataDir)
	}
	return dataDir, nil
}

// GetDataPath 获取数据目录下的文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(DataDir(config), subdir, filename)
}

// InputPath 录入数据 CSV 路径
func InputPath(config *AppConfig) string {
	return GetDataPath(config, "", config.Data.InputFile)
}

// DatabasePath SQLite 数据库路径
func DatabasePath(config *AppConfig) string {
	return GetDataPath(config, "", config.Data.Database)
}

// ExportDir 导出目录
func ExportDir(config *AppConfig) string {
	return filepath.Join(DataDir(config), "exports")
}

// WorkbookPath 历史数据工作簿路径
func WorkbookPath(config *AppConfig) string {
	return ResolvePath(config.Source.Workbook)
}
