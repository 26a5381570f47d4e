package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/internal/postgres"
	"github.com/marketlens/aptos-indexer/pkg/logger"
	"github.com/marketlens/aptos-indexer/pkg/logger/slogx"
	"github.com/marketlens/aptos-indexer/pkg/middleware/requestcontext"
	"github.com/marketlens/aptos-indexer/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		AptosNode: AptosNodeClient{
			FullnodeURL: "https://fullnode.mainnet.aptoslabs.com",
		},
		HTTPServer: HTTPServer{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger        logger.Config   `mapstructure:"logger"`
	AptosNode     AptosNodeClient `mapstructure:"aptos_node"`
	Network       common.Network  `mapstructure:"network"`
	APIOnly       bool            `mapstructure:"api_only"`
	EnableModules []string        `mapstructure:"enable_modules"`
	HTTPServer    HTTPServer      `mapstructure:"http_server"`
	Modules       Modules         `mapstructure:"modules"`
}

type AptosNodeClient struct {
	FullnodeURL string `mapstructure:"fullnode_url"`
}

type HTTPServer struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Marketplace Module `mapstructure:"marketplace"`
}

type Module struct {
	Database    string          `mapstructure:"database"`
	Postgres    postgres.Config `mapstructure:"postgres"`
	Datasource  string          `mapstructure:"datasource"`
	APIHandlers []string        `mapstructure:"api_handlers"`
}

// BindPFlag binds a command-line flag to a configuration key.
// Must be called before Parse/Load.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("failed to bind flag to configuration", slogx.Error(err), slog.String("key", key))
	}
}

// Parse loads the configuration from the given config file (or the default
// lookup paths if empty) and environment variables.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded config successfully")
	})

	return *config
}

// Load returns the loaded configuration. If the configuration has not been
// parsed yet, it is parsed from the default lookup paths.
func Load() Config {
	return Parse("")
}
