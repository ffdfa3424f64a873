package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN"`
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Backend     BackendConfig     `yaml:"backend"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Redis       RedisConf         `yaml:"redis"`
	Cache       CacheConfig       `yaml:"cache"`
	Widget      WidgetConfig      `yaml:"widget"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host" env:"HTTP_HOST"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"5m"`

	// AllowOrigins lists the sites allowed to embed the grid.
	AllowOrigins []string `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-separator:","`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL      time.Duration `yaml:"token_ttl" env-default:"1h"`
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET" env-required:"true"`
	EditorEmail   string        `yaml:"editor_email" env:"EDITOR_EMAIL"`

	// EditorPasswordHash is a bcrypt hash.
	EditorPasswordHash string `yaml:"editor_password_hash" env:"EDITOR_PASSWORD_HASH"`
}

const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

type BackendConfig struct {
	Kind          string        `yaml:"kind" env:"BACKEND_KIND" env-default:"local"`
	SiteURL       string        `yaml:"site_url" env:"BACKEND_SITE_URL"`
	MediaAPIURL   string        `yaml:"media_api_url" env:"BACKEND_MEDIA_API_URL"`
	LibraryID     string        `yaml:"library_id" env:"BACKEND_LIBRARY_ID"`
	WebsiteID     string        `yaml:"website_id" env:"BACKEND_WEBSITE_ID"`
	TemplateID    string        `yaml:"template_id" env:"BACKEND_TEMPLATE_ID"`
	Token         string        `yaml:"token" env:"BACKEND_TOKEN"`
	Timeout       time.Duration `yaml:"timeout" env-default:"30s"`
	AssetTokenTTL time.Duration `yaml:"asset_token_ttl" env-default:"24h"`
	HeaderPath    string        `yaml:"header_path" env-default:"config/header.html"`

	// VideoURLPattern builds processed video urls, {assetId} is replaced.
	VideoURLPattern string `yaml:"video_url_pattern" env:"BACKEND_VIDEO_URL_PATTERN"`
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type FileStorageConfig struct {
	Kind     string `yaml:"kind" env:"FILE_STORAGE_KIND" env-default:"local"`
	BaseDir  string `yaml:"base_dir" env-default:"uploads"`
	BaseURL  string `yaml:"base_url" env:"FILE_STORAGE_BASE_URL" env-default:"/uploads"`
	MaxSize  int64  `yaml:"max_size" env-default:"104857600"`
	S3Bucket string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region string `yaml:"s3_region" env:"S3_REGION"`
	S3Prefix string `yaml:"s3_prefix" env:"S3_PREFIX"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" env-default:"5m"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env-default:"10m"`
}

type WidgetConfig struct {
	// StrictInvariants panics on a grid invariant violation. Forced on in
	// the local env.
	StrictInvariants bool `yaml:"strict_invariants"`

	ImagePollInterval time.Duration `yaml:"image_poll_interval" env-default:"1s"`
	VideoPollInterval time.Duration `yaml:"video_poll_interval" env-default:"3s"`
	ImagePollAttempts int           `yaml:"image_poll_attempts" env-default:"30"`

	// UploadTimeout bounds a whole upload pipeline, video polling included.
	UploadTimeout time.Duration `yaml:"upload_timeout" env-default:"10m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	// .env is optional, real environment wins
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if cfg.Env == "local" {
		cfg.Widget.StrictInvariants = true
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		_ = godotenv.Load()
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
