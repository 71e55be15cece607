package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	// Driver is one of postgres, mysql, sqlite.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	// Addr empty disables Redis; serialization falls back to
	// in-process locks.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HotelConfig struct {
	// Timezone is the property's local timezone, used to resolve
	// calendar dates and check-in/check-out instants.
	Timezone            string `mapstructure:"timezone"`
	DefaultCheckInTime  string `mapstructure:"default_check_in_time"`
	DefaultCheckOutTime string `mapstructure:"default_check_out_time"`
	// CheckoutRoomStatus is the room status applied after checkout,
	// either "cleaning" or "dirty".
	CheckoutRoomStatus string `mapstructure:"checkout_room_status"`
}

type LogConfig struct {
	// Mode is "production" (JSON) or "development" (console).
	Mode string `mapstructure:"mode"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Hotel    HotelConfig    `mapstructure:"hotel"`
	Log      LogConfig      `mapstructure:"log"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:casaluna.db?cache=shared")
	v.SetDefault("hotel.timezone", "America/Bogota")
	v.SetDefault("hotel.default_check_in_time", "15:00")
	v.SetDefault("hotel.default_check_out_time", "12:00")
	v.SetDefault("hotel.checkout_room_status", "cleaning")
	v.SetDefault("log.mode", "production")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/casaluna")

	v.SetEnvPrefix("CASALUNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Hotel.CheckoutRoomStatus {
	case "cleaning", "dirty":
	default:
		return fmt.Errorf("unsupported checkout room status %q", c.Hotel.CheckoutRoomStatus)
	}
	return nil
}
