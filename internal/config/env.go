package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env        string `envconfig:"ENV" default:"local"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ConfigFile string `envconfig:"CONFIG_FILE" default:"taskbrief.yaml"`
}

type NotionEnv struct {
	APIKey           string `envconfig:"NOTION_API_KEY" required:"true"`
	TasksDB          string `envconfig:"NOTION_TASKS_DB" required:"true"`
	ProjectsDB       string `envconfig:"NOTION_PROJECTS_DB" required:"true"`
	SampleTaskPageID string `envconfig:"SAMPLE_TASK_PAGE_ID"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:"target"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskbrief/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
}

type Env struct {
	BaseEnv
	NotionEnv
	StorageEnv
}

const namespace = "TASKBRIEF"

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
