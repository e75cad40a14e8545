package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pantauharga/internal/config"
	"pantauharga/internal/importer"
	"pantauharga/internal/parser"
	"pantauharga/internal/service/dashboard"
	"pantauharga/internal/store"
)

var (
	cfg     *config.AppConfig
	cfgInfo config.LoadConfigInfo

	flagConfig   string
	flagPort     int
	flagDev      bool
	flagDataDir  string
	flagWorkbook string
)

var rootCmd = &cobra.Command{
	Use:          "pantauharga",
	Short:        "Dasbor pemantauan harga komoditas",
	Long:         "Membaca workbook harga harian, menyimpan input harga baru ke data_input.csv, dan menampilkan rekapan tabel serta tren harga di browser.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, cfgInfo, err = config.LoadConfigFrom(flagConfig)
		} else {
			cfg, cfgInfo, err = config.LoadConfigWithInfo()
		}
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyFlags(cmd, cfg)

		if _, err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.L().Debug("config loaded",
			zap.String("path", cfgInfo.Path),
			zap.Bool("found", cfgInfo.Found),
			zap.String("workbook", config.WorkbookPath(cfg)),
			zap.String("store", cfg.Data.Store),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "配置文件路径（默认为可执行文件同目录的 config.toml）")
	pf.IntVar(&flagPort, "port", 0, "服务端口")
	pf.BoolVar(&flagDev, "dev", false, "开发模式（不自动打开浏览器）")
	pf.StringVar(&flagDataDir, "data-dir", "", "数据目录")
	pf.StringVar(&flagWorkbook, "workbook", "", "历史价格 Excel 文件")
}

// applyFlags 命令行参数覆盖配置文件与环境变量
func applyFlags(cmd *cobra.Command, c *config.AppConfig) {
	pf := cmd.Flags()
	if pf.Changed("port") && flagPort > 0 {
		c.Server.Port = flagPort
	}
	if pf.Changed("dev") {
		c.Server.DevMode = flagDev
	}
	if flagDataDir != "" {
		c.Data.DataDir = flagDataDir
	}
	if flagWorkbook != "" {
		c.Source.Workbook = flagWorkbook
	}
}

// openStore 按配置打开录入数据存储
func openStore(c *config.AppConfig) (store.Store, error) {
	if _, err := config.EnsureDataDir(c); err != nil {
		return nil, err
	}
	return store.Open(c.Data.Store, config.InputPath(c), config.DatabasePath(c))
}

// openDashboard 创建数据源缓存与存储；调用方负责关闭返回的存储
func openDashboard(c *config.AppConfig) (*dashboard.Dashboard, store.Store, error) {
	st, err := openStore(c)
	if err != nil {
		return nil, nil, err
	}
	src := importer.NewSource(importer.SourceOptions{
		Path:        config.WorkbookPath(c),
		ChoiceSheet: c.Source.ChoiceSheet,
		DailySheets: c.Source.DailySheets,
		Aliases:     parser.ColumnAliases(c.Source.ColumnAliases),
	})
	return dashboard.New(src, st), st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
