package config

import (
	"time"

	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		Listen string `default:":8080" env:"APP_LISTEN"`
	}
	Database struct {
		DriverType string `default:"mysql" env:"DB_DRIVER"`
		DriverArgs string `default:"root:root@(127.0.0.1:3306)/claimflow?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s" env:"DB_ARGS"`
		// MigrateOnStart runs gorm AutoMigrate for all claim tables.
		MigrateOnStart *bool `default:"true" env:"DB_MIGRATE_ON_START"`
	}
	Elasticsearch struct {
		URL string `default:"" env:"ELASTICSEARCH_URL"`
	}
	Directory struct {
		CacheExpirationSeconds int `default:"300" env:"DIRECTORY_CACHE_EXPIRATION_SECONDS"`
	}
	Tracing struct {
		Enabled *bool `default:"false" env:"TRACING_ENABLED"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() *Configuration {
	if Conf != nil {
		return Conf
	}
	conf := new(Configuration)
	if err := configor.New(&configor.Config{}).Load(conf, configFiles()...); err != nil {
		panic(err)
	}
	Conf = conf
	return Conf
}

func (c *Configuration) DirectoryCacheExpiration() time.Duration {
	if c.Directory.CacheExpirationSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Directory.CacheExpirationSeconds) * time.Second
}
