package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config структура конфигурации.
type Config struct {
	Logger LogConf    // Logger - конфигурация регистратора.
	State  StateConf  // State - расположение файла состояния.
	Device DeviceConf // Device - идентификатор USB-адаптера.
}

// LogConf структура конфигурации.
type LogConf struct {
	Level string `toml:"log-level" env:"DMX_LOG_LEVEL"` // Level - уровень логирования.
}

// StateConf структура конфигурации.
type StateConf struct {
	// Path overrides the default state file under the user's cache directory.
	Path string `toml:"path" env:"DMX_STATE_PATH"`
}

// DeviceConf структура конфигурации.
type DeviceConf struct {
	VendorID  uint16 `toml:"vendor-id"`  // VendorID - USB VID адаптера.
	ProductID uint16 `toml:"product-id"` // ProductID - USB PID адаптера.
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() Config {
	return Config{
		Logger: LogConf{Level: "warn"},
		Device: DeviceConf{VendorID: 0x0403, ProductID: 0x6001},
	}
}

// NewConfig конструктор. An empty path or a missing file leaves the defaults
// in place; environment variables are applied last.
func NewConfig(path string) (*Config, error) {
	// default values
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return &cfg, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
