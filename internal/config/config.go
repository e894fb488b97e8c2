package config

import (
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"log"
	"os"
	"runtime"
	"time"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Storage    `yaml:"storage"`
	Upload     `yaml:"upload"`
	Kafka      `yaml:"kafka"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8082"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"images"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// Storage holds the filesystem roots every stored path is confined to.
type Storage struct {
	ImagesRoot  string `yaml:"images_root" env:"IMAGES_ROOT" env-default:"./images"`
	AvatarsRoot string `yaml:"avatars_root" env:"AVATARS_ROOT" env-default:"./avatars"`
}

type Upload struct {
	MinFiles    int   `yaml:"min_files" env-default:"2"`
	MaxFiles    int   `yaml:"max_files" env-default:"12"`
	MaxFileSize int64 `yaml:"max_file_size" env-default:"10485760"`
	// Workers bounds concurrent transforms across all requests. Zero means one per CPU.
	Workers int `yaml:"workers" env:"UPLOAD_WORKERS"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"image-events"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"image-janitor"`
}

func MustLoad() *Config {
	// .env is optional, real environment variables win.
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("config path is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if cfg.Upload.Workers <= 0 {
		cfg.Upload.Workers = runtime.NumCPU()
	}
	if cfg.Upload.MinFiles > cfg.Upload.MaxFiles {
		return nil, fmt.Errorf("upload.min_files (%d) exceeds upload.max_files (%d)", cfg.Upload.MinFiles, cfg.Upload.MaxFiles)
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
