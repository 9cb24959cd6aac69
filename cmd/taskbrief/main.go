package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/taskbrief/taskbrief/internal/config"
	"github.com/taskbrief/taskbrief/internal/notion"
	"github.com/taskbrief/taskbrief/internal/project"
	"github.com/taskbrief/taskbrief/internal/report"
	"github.com/taskbrief/taskbrief/internal/run"
	"github.com/taskbrief/taskbrief/internal/task"
	"github.com/taskbrief/taskbrief/pkg/cerr"
	"github.com/taskbrief/taskbrief/pkg/clog"
	"github.com/taskbrief/taskbrief/pkg/storage"
)

const sampleTaskFile = "sample_task.json"

var (
	app = kingpin.New("taskbrief", "Notion task report generator")

	reportCmd = app.Command("report", "Generate the task report pair").Default()

	projectsCmd        = app.Command("projects", "Project cache commands")
	projectsRefreshCmd = projectsCmd.Command("refresh", "Force a refresh of the project name cache")

	inspectCmd    = app.Command("inspect", "Dump a raw task page for schema inspection")
	inspectPageID = inspectCmd.Arg("page-id", "Notion page ID (defaults to TASKBRIEF_SAMPLE_TASK_PAGE_ID)").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	settings, err := config.LoadSettings(env.ConfigFile)
	if err != nil {
		slog.Error("failed to load settings", "path", env.ConfigFile, "error", err)
		os.Exit(1)
	}

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(clog.ContextWithSlog(context.Background()), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()
	clog.AddAttribute(ctx, "run_id", ulid.Make().String())

	client := notion.NewClient(env.APIKey)
	projects := project.NewStore(store, client, env.ProjectsDB, settings.CacheMaxAge(), time.Now)

	switch command {
	case reportCmd.FullCommand():
		runner := run.New(
			projects,
			task.NewClassifier(client, env.TasksDB, time.Now),
			report.NewArchiver(store, settings.Retention(), time.Now),
			report.NewRenderer(store, time.Now),
		)
		if err := runner.GenerateReport(ctx); err != nil {
			os.Exit(1)
		}
	case projectsRefreshCmd.FullCommand():
		if _, err := projects.Refresh(ctx); err != nil {
			cerr.Log(ctx, err, "failed to refresh project cache")
			os.Exit(1)
		}
	case inspectCmd.FullCommand():
		pageID := *inspectPageID
		if pageID == "" {
			pageID = env.SampleTaskPageID
		}
		if pageID == "" {
			slog.Error("no page ID given and TASKBRIEF_SAMPLE_TASK_PAGE_ID is not set")
			os.Exit(1)
		}
		if err := inspectPage(ctx, client, store, pageID); err != nil {
			cerr.Log(ctx, err, "failed to inspect task page")
			os.Exit(1)
		}
	}
}

// inspectPage fetches one task page and stores its raw JSON so the property
// schema can be examined when the database layout changes.
func inspectPage(ctx context.Context, client notion.API, store storage.Storage, pageID string) error {
	page, err := client.RetrievePage(ctx, pageID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(page, "", "    ")
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to encode task page", err)
	}
	if err := store.Write(ctx, sampleTaskFile, data); err != nil {
		return cerr.WrapStorageWriteError(sampleTaskFile, err)
	}
	slog.InfoContext(ctx, "stored sample task page", "path", sampleTaskFile, "page_id", pageID)
	return nil
}
