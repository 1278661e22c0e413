package share

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Listen   string
	DataDir  string
	CacheDir string
	Database string
	Workers  int

	DpsReportURL   string
	WingmanURL     string
	WingmanRefresh time.Duration

	ArchiveBucket   string
	AwsEndpointURL  string
	RecaptchaSecret string
	SentryDsn       string
}

func LoadConfig() (*Config, error) {
	godotenv.Load(".env")

	cfg := &Config{
		Listen:          getenv("ISAC_LISTEN", "127.0.0.1:5555"),
		DataDir:         getenv("ISAC_DATA_DIR", "./gw2"),
		CacheDir:        getenv("ISAC_CACHE_DIR", "./_cachedata"),
		Database:        getenv("ISAC_DATABASE", "./isac.db"),
		DpsReportURL:    getenv("ISAC_DPS_REPORT_URL", "https://dps.report"),
		WingmanURL:      getenv("ISAC_WINGMAN_URL", "https://gw2wingman.nevermindcreations.de/api"),
		ArchiveBucket:   os.Getenv("ISAC_ARCHIVE_BUCKET"),
		AwsEndpointURL:  os.Getenv("AWS_ENDPOINT_URL"),
		RecaptchaSecret: os.Getenv("GOOGLE_RECAPTCHA_V3_SECRET"),
		SentryDsn:       os.Getenv("SENTRY_DSN"),
	}

	var err error

	cfg.Workers, err = strconv.Atoi(getenv("ISAC_WORKERS", "8"))
	if err != nil {
		return nil, errors.Wrap(err, "ISAC_WORKERS")
	}
	if cfg.Workers < 1 {
		return nil, errors.Errorf("ISAC_WORKERS must be positive, got %d", cfg.Workers)
	}

	cfg.WingmanRefresh, err = time.ParseDuration(getenv("ISAC_WINGMAN_REFRESH", "4h"))
	if err != nil {
		return nil, errors.Wrap(err, "ISAC_WINGMAN_REFRESH")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
