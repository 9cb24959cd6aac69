package project

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jomei/notionapi"

	"github.com/taskbrief/taskbrief/internal/notion"
	"github.com/taskbrief/taskbrief/pkg/cerr"
	"github.com/taskbrief/taskbrief/pkg/storage"
)

// CacheFile is where the project cache lives inside the storage root. The
// JSON layout ({generated_at, projects}) is an external contract.
const CacheFile = "notion-projects.json"

const propName = "Name"

// Cache maps project page ids to display names.
type Cache struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Projects    map[string]string `json:"projects"`
}

// Name resolves a project id to its display name. The renderer is the only
// caller; it omits the project suffix when resolution fails.
func (c *Cache) Name(id string) (string, bool) {
	if c == nil || id == "" {
		return "", false
	}
	name, ok := c.Projects[id]
	return name, ok
}

// Store owns the cache lifecycle: load, freshness check, refresh, persist.
type Store struct {
	storage    storage.Storage
	api        notion.API
	databaseID string
	maxAge     time.Duration
	now        func() time.Time
}

func NewStore(s storage.Storage, api notion.API, databaseID string, maxAge time.Duration, now func() time.Time) *Store {
	return &Store{
		storage:    s,
		api:        api,
		databaseID: databaseID,
		maxAge:     maxAge,
		now:        now,
	}
}

// EnsureFresh returns the persisted cache unchanged if it is younger than
// the freshness window, without touching the remote store. Otherwise it
// refreshes. A refresh failure is returned as-is; the stale file stays on
// disk untouched.
func (s *Store) EnsureFresh(ctx context.Context) (*Cache, error) {
	cache, err := s.load(ctx)
	if err == nil {
		if age := s.now().Sub(cache.GeneratedAt); age < s.maxAge {
			slog.InfoContext(ctx, "project cache is up to date", "age", age)
			return cache, nil
		}
	} else if !cerr.IsCode(err, cerr.NotFound) {
		slog.WarnContext(ctx, "failed to load project cache, refreshing", "error", err)
	}
	return s.Refresh(ctx)
}

// Refresh queries every project entry, keeps the ones carrying a name, and
// persists the result stamped with the current time.
func (s *Store) Refresh(ctx context.Context) (*Cache, error) {
	slog.InfoContext(ctx, "fetching projects from Notion")
	pages, err := s.api.QueryDatabase(ctx, s.databaseID, nil)
	if err != nil {
		return nil, cerr.NewError(cerr.Unavailable, "failed to refresh project cache", err)
	}

	cache := &Cache{
		GeneratedAt: s.now(),
		Projects:    make(map[string]string, len(pages)),
	}
	for _, page := range pages {
		name, ok := titleOf(page)
		if !ok {
			// Entries without a name field are skipped, not fatal.
			continue
		}
		cache.Projects[string(page.ID)] = name
	}

	if err := s.save(ctx, cache); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "project cache refreshed", "projects", len(cache.Projects))
	return cache, nil
}

func (s *Store) load(ctx context.Context) (*Cache, error) {
	data, err := s.storage.Read(ctx, CacheFile)
	if err != nil {
		return nil, cerr.WrapStorageReadError("project cache", err)
	}
	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, cerr.NewError(cerr.Internal, "project cache is corrupt", fmt.Errorf("failed to unmarshal %s: %w", CacheFile, err))
	}
	return &cache, nil
}

func (s *Store) save(ctx context.Context, cache *Cache) error {
	data, err := json.MarshalIndent(cache, "", "    ")
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to encode project cache", err)
	}
	if err := s.storage.Write(ctx, CacheFile, data); err != nil {
		return cerr.WrapStorageWriteError("project cache", err)
	}
	return nil
}

func titleOf(page notionapi.Page) (string, bool) {
	if page.Properties == nil {
		return "", false
	}
	tp, ok := page.Properties[propName].(*notionapi.TitleProperty)
	if !ok || len(tp.Title) == 0 {
		return "", false
	}
	if tp.Title[0].Text == nil || tp.Title[0].Text.Content == "" {
		return "", false
	}
	return tp.Title[0].Text.Content, true
}
