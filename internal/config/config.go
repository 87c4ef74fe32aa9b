package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// AssetBasePath is the blob-store root; sign images live under
	// its "signs/" subtree and the resolver registry is built from
	// that listing.
	AssetBasePath string
	// RemoteAssetBase prefixes unresolvable paths into remote URLs.
	RemoteAssetBase string

	// BundleDir holds the fallback question bundles (<key>.json).
	BundleDir string

	// SecondaryLocale is the alternate-text locale code.
	SecondaryLocale string
	// CorrectPolicy: "first_option" or "reject".
	CorrectPolicy string

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		AssetBasePath:   envOr("ASSET_BASE_PATH", "./data"),
		RemoteAssetBase: envOr("REMOTE_ASSET_BASE", "https://content.roadprep.app"),
		BundleDir:       envOr("BUNDLE_DIR", "./data/bundles"),
		SecondaryLocale: envOr("SECONDARY_LOCALE", "ur"),
		CorrectPolicy:   envOr("CORRECT_POLICY", "first_option"),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
