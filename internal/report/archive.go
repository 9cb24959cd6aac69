package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/taskbrief/taskbrief/pkg/cerr"
	"github.com/taskbrief/taskbrief/pkg/storage"
)

const archiveDateFormat = "2006_01_02"

var archivePattern = regexp.MustCompile(`^tasks_report_\d{4}_\d{2}_\d{2}\.(md|txt)$`)

// Archiver rotates the current report pair into dated archive files and
// retires archives older than the retention window.
type Archiver struct {
	storage   storage.Storage
	retention time.Duration
	now       func() time.Time
}

func NewArchiver(s storage.Storage, retention time.Duration, now func() time.Time) *Archiver {
	return &Archiver{
		storage:   s,
		retention: retention,
		now:       now,
	}
}

// RotateAndCleanup renames the current pair, if present, into dated archive
// files, then sweeps the archive. The sweep runs on every call, whether or
// not anything was rotated. Rotation failure is fatal (a new report must
// not silently overwrite an unarchived one); sweep failures are logged and
// skipped.
func (a *Archiver) RotateAndCleanup(ctx context.Context) error {
	if err := a.rotate(ctx); err != nil {
		return err
	}
	a.cleanup(ctx)
	return nil
}

func (a *Archiver) rotate(ctx context.Context) error {
	exists, err := a.storage.Exists(ctx, FileMD)
	if err != nil {
		return cerr.WrapStorageReadError("current report", err)
	}
	if !exists {
		// Nothing current to rotate; a second run on the same day lands here.
		return nil
	}

	stamp := a.now().Format(archiveDateFormat)
	archivedMD := fmt.Sprintf("tasks_report_%s.md", stamp)
	archivedTXT := fmt.Sprintf("tasks_report_%s.txt", stamp)

	if err := a.storage.Rename(ctx, FileMD, archivedMD); err != nil {
		return cerr.WrapStorageWriteError("report archive", err)
	}
	if err := a.storage.Rename(ctx, FileTXT, archivedTXT); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "plain-text report missing during rotation", "path", FileTXT)
			return nil
		}
		return cerr.WrapStorageWriteError("report archive", err)
	}
	slog.InfoContext(ctx, "rotated report pair", "stamp", stamp)
	return nil
}

func (a *Archiver) cleanup(ctx context.Context) {
	paths, err := a.storage.List(ctx, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to list report archive", "error", err)
		return
	}

	now := a.now()
	for _, path := range paths {
		if !archivePattern.MatchString(path) {
			continue
		}
		fi, err := a.storage.Stat(ctx, path)
		if err != nil {
			slog.WarnContext(ctx, "failed to stat archived report", "path", path, "error", err)
			continue
		}
		if now.Sub(fi.ModTime) <= a.retention {
			continue
		}
		if err := a.storage.Delete(ctx, path); err != nil {
			slog.WarnContext(ctx, "failed to delete old report", "path", path, "error", err)
			continue
		}
		slog.InfoContext(ctx, "deleted old report", "path", path)
	}
}
