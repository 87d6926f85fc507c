package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the lambdas and the local server read from the
// environment. Defaults match the deployed stack so a bare `go run` works
// against it.
type Config struct {
	Region        string        `env:"AWS_REGION" env-default:"us-west-1"`
	TableName     string        `env:"PRODUCT_TABLE" env-default:"product-inventory"`
	Bucket        string        `env:"IMAGE_BUCKET" env-default:"hannahs-arts-crafts-images"`
	UploadTTL     time.Duration `env:"UPLOAD_URL_TTL" env-default:"5m"`
	ThumbnailEdge int           `env:"THUMBNAIL_EDGE" env-default:"256"`
	ListenAddr    string        `env:"LISTEN_ADDR" env-default:":8080"`
	WebDir        string        `env:"WEB_DIR" env-default:"./web"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}
