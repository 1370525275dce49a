package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/subdash/internal/dbx"
	"github.com/joho/godotenv"
)

// loadDotEnv copies variables from a .env file into the process
// environment. Variables already set win; a missing file is fine.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// parseEnv overlays config with environment variables.
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, DB_MAX_OPEN_CONNS, SHUTDOWN_TIMEOUT,
//	LOG_LEVEL, LOG_FORMAT, EXPORT_DIR, S3_ACCESS_KEY, S3_SECRET_KEY,
//	S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT, PRESIGN_EXPIRY
//
// Durations use time.ParseDuration syntax. Without DATABASE_DSN the DSN may
// also be given piecewise through DB_HOST, DB_PORT, DB_NAME, DB_USER,
// DB_PASSWORD and DB_SSLMODE; DB_HOST must be set for that to apply.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":        &config.EndpointAddrHTTP,
		"GRPC_ADDR":        &config.EndpointAddrGRPC,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"LOG_LEVEL":        &config.LogLevel,
		"LOG_FORMAT":       &config.LogFormat,
		"EXPORT_DIR":       &config.ExportDir,
		"S3_ACCESS_KEY":    &config.S3AccessKey,
		"S3_SECRET_KEY":    &config.S3SecretKey,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("DATABASE_DSN"); !ok || v == "" {
		dsn, err := dsnFromParts(lookup)
		if err != nil {
			return err
		}
		if dsn != "" {
			config.DatabaseDSN = dsn
		}
	}

	if v, ok := lookup("DB_MAX_OPEN_CONNS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
		}
		config.DBMaxOpenConns = n
	}

	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &config.ShutdownTimeout,
		"PRESIGN_EXPIRY":   &config.PresignExpiry,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	return nil
}

func dsnFromParts(lookup func(string) (string, bool)) (string, error) {
	host, ok := lookup("DB_HOST")
	if !ok || host == "" {
		return "", nil
	}

	p := dbx.ConnParams{
		Host:     host,
		Port:     5432,
		Database: "subscription_db",
		User:     "postgres",
		SSLMode:  "disable",
	}

	if v, ok := lookup("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("DB_PORT: %w", err)
		}
		p.Port = port
	}
	if v, ok := lookup("DB_NAME"); ok && v != "" {
		p.Database = v
	}
	if v, ok := lookup("DB_USER"); ok && v != "" {
		p.User = v
	}
	if v, ok := lookup("DB_PASSWORD"); ok {
		p.Password = v
	}
	if v, ok := lookup("DB_SSLMODE"); ok && v != "" {
		p.SSLMode = v
	}

	return p.DSN(), nil
}
