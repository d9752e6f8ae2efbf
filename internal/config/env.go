package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

type FoundryEnv struct {
	// ProjectEndpoint is the agent platform's project endpoint URL.
	ProjectEndpoint string `envconfig:"PROJECT_ENDPOINT" required:"true"`
	ModelDeployment string `envconfig:"MODEL_DEPLOYMENT" default:"gpt-4o"`
	// TokenScope is the OAuth scope requested from the credential chain.
	TokenScope string `envconfig:"TOKEN_SCOPE" default:"https://cognitiveservices.azure.com/.default"`
	// Credential selects how tokens are acquired: "cli" or "default".
	Credential string `envconfig:"CREDENTIAL" default:"cli"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"memory"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".agentportal/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"agentportal/"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
}

type Env struct {
	BaseEnv
	FoundryEnv
	StorageEnv
}

const namespace = "AGENTPORTAL"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func FoundryEnvFromEnv(env *Env) *FoundryEnv {
	return &env.FoundryEnv
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}
