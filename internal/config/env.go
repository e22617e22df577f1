// Package config holds process configuration: environment variables loaded
// from an optional .env file, and the catalogue of dataset presets.
package config

import (
	"os"
	"strconv"

	"github.com/FocuswithJustin/biocorpus/internal/logging"
	"github.com/FocuswithJustin/biocorpus/internal/source"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDataDir        = "BIOCORPUS_DATA_DIR"
	EnvWorkers        = "BIOCORPUS_WORKERS"
	EnvStrict         = "BIOCORPUS_STRICT"
	EnvS3Region       = "BIOCORPUS_S3_REGION"
	EnvS3Endpoint     = "BIOCORPUS_S3_ENDPOINT"
	EnvS3AccessKey    = "BIOCORPUS_S3_ACCESS_KEY_ID"
	EnvS3SecretKey    = "BIOCORPUS_S3_SECRET_ACCESS_KEY"
	EnvS3UsePathStyle = "BIOCORPUS_S3_USE_PATH_STYLE"
)

// LoadEnv reads files (default ".env") into the process environment.
// Variables already set are not overwritten.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logging.Debug("no .env file found, using process environment")
	}
}

func GetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return ""
	}
	return value
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func GetEnvNumeric(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}

// S3FromEnv builds S3 settings from the BIOCORPUS_S3_* variables. Unset
// credentials fall back to the AWS default chain.
func S3FromEnv() source.S3Config {
	return source.S3Config{
		Region:          GetEnv(EnvS3Region),
		Endpoint:        GetEnv(EnvS3Endpoint),
		AccessKeyID:     GetEnv(EnvS3AccessKey),
		SecretAccessKey: GetEnv(EnvS3SecretKey),
		UsePathStyle:    GetEnvBool(EnvS3UsePathStyle, false),
	}
}
