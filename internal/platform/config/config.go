package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config captures everything the binaries read from the environment.
type Config struct {
	// Addr is the editor app listen address, ViewerAddr the read-only viewer's.
	Addr       string
	ViewerAddr string

	// DataDir holds converted data records, RegisterDir the authored register
	// batches, FragmentDir the generated schema fragments.
	DataDir     string
	RegisterDir string
	FragmentDir string

	// BasePath prefixes viewer URLs when the static export is hosted below a
	// project page path. Empty means site root.
	BasePath string

	SiteTitle  string
	Disclaimer string

	// LogLevel is one of debug, info, warn or error.
	LogLevel string
}

// FromEnv builds the config from CIVICAT_* environment variables so main
// stays lean. A local .env file is loaded first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        envOr("CIVICAT_ADDR", ":8000"),
		ViewerAddr:  envOr("CIVICAT_VIEWER_ADDR", ":9000"),
		DataDir:     envOr("CIVICAT_DATA_DIR", "data"),
		RegisterDir: envOr("CIVICAT_REGISTER_DIR", "register"),
		FragmentDir: envOr("CIVICAT_FRAGMENT_DIR", "docs/schema/fragment"),
		BasePath:    os.Getenv("CIVICAT_BASE_PATH"),
		SiteTitle:   envOr("CIVICAT_SITE_TITLE", "civicat"),
		Disclaimer:  os.Getenv("CIVICAT_DISCLAIMER"),
		LogLevel:    envOr("CIVICAT_LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
