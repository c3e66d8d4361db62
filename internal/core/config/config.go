package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	StaticDir       string // prebuilt SPA served on unmatched routes, optional
}
type AdminHTTP struct {
	Host string
	Port int
}

type CORS struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
	CORS  CORS `mapstructure:"cors"`
}

type Log struct {
	Level  string
	JSON   bool
	Rotate struct {
		Enable     bool
		Filename   string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// MQ is the broker reservation events are published to. An empty URL
// disables publishing and confirmations are only logged.
type MQ struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type Booking struct {
	Slots          []string `mapstructure:"slots"`
	ClosedWeekdays []string `mapstructure:"closed_weekdays"`
	MinParty       int      `mapstructure:"min_party"`
	MaxParty       int      `mapstructure:"max_party"`
	Timezone       string   `mapstructure:"timezone"`
}

type Bootstrap struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis     `mapstructure:"redis"`
	MQ        MQ        `mapstructure:"mq"`
	SMTP      SMTP      `mapstructure:"smtp"`
	Booking   Booking   `mapstructure:"booking"`
	Bootstrap Bootstrap `mapstructure:"bootstrap"`
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

// Read is Load without the fatal exit.
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "restaurant-booking")
	v.SetDefault("jwt.accesstokenttlmin", 120)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:restaurant.db?_foreign_keys=on")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("redis.ttl_sec", 300)
	v.SetDefault("mq.exchange", "restaurant")
	v.SetDefault("mq.queue", "reservation.notifications")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("booking.min_party", 2)
	v.SetDefault("booking.max_party", 8)
	v.SetDefault("booking.closed_weekdays", []string{"monday"})
}

// CacheTTL is the catalog cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLSec) * time.Second
}
