package project

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskbrief/taskbrief/pkg/storage"
)

type fakeAPI struct {
	pages   []notionapi.Page
	err     error
	queries int
}

func (f *fakeAPI) QueryDatabase(context.Context, string, notionapi.Filter) ([]notionapi.Page, error) {
	f.queries++
	return f.pages, f.err
}

func (f *fakeAPI) RetrievePage(context.Context, string) (*notionapi.Page, error) {
	return nil, errors.New("not scripted")
}

func projectPage(id, name string) notionapi.Page {
	props := notionapi.Properties{}
	if name != "" {
		props[propName] = &notionapi.TitleProperty{
			Type:  "title",
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: name}, PlainText: name}},
		}
	}
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

func newTestStore(t *testing.T, api *fakeAPI, now func() time.Time) (*Store, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewStore(store, api, "projects-db", 24*time.Hour, now), store
}

func writeCache(t *testing.T, store storage.Storage, cache *Cache) {
	t.Helper()
	data, err := json.MarshalIndent(cache, "", "    ")
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), CacheFile, data))
}

func TestEnsureFresh_FreshCacheSkipsRemote(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{}
	s, store := newTestStore(t, api, func() time.Time { return now })

	writeCache(t, store, &Cache{
		GeneratedAt: now.Add(-23*time.Hour - 59*time.Minute),
		Projects:    map[string]string{"p1": "Alpha"},
	})

	cache, err := s.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, api.queries)

	name, ok := cache.Name("p1")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", name)
}

func TestEnsureFresh_StaleCacheRefreshes(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{pages: []notionapi.Page{projectPage("p1", "Alpha"), projectPage("p2", "Beta")}}
	s, store := newTestStore(t, api, func() time.Time { return now })

	writeCache(t, store, &Cache{
		GeneratedAt: now.Add(-24*time.Hour - 1*time.Minute),
		Projects:    map[string]string{"p1": "Old Alpha"},
	})

	cache, err := s.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.queries)
	assert.Equal(t, now, cache.GeneratedAt)
	assert.Equal(t, map[string]string{"p1": "Alpha", "p2": "Beta"}, cache.Projects)

	// Refresh is persisted.
	data, err := store.Read(context.Background(), CacheFile)
	require.NoError(t, err)
	var persisted Cache
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, cache.Projects, persisted.Projects)
}

func TestEnsureFresh_MissingCacheRefreshes(t *testing.T) {
	now := time.Now()
	api := &fakeAPI{pages: []notionapi.Page{projectPage("p1", "Alpha")}}
	s, _ := newTestStore(t, api, func() time.Time { return now })

	cache, err := s.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.queries)
	assert.Len(t, cache.Projects, 1)
}

func TestEnsureFresh_RefreshFailureKeepsStaleFile(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{err: errors.New("notion is down")}
	s, store := newTestStore(t, api, func() time.Time { return now })

	stale := &Cache{
		GeneratedAt: now.Add(-48 * time.Hour),
		Projects:    map[string]string{"p1": "Alpha"},
	}
	writeCache(t, store, stale)

	_, err := s.EnsureFresh(context.Background())
	require.Error(t, err)

	// The stale file is left in place, untouched.
	data, err := store.Read(context.Background(), CacheFile)
	require.NoError(t, err)
	var persisted Cache
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, stale.Projects, persisted.Projects)
}

func TestRefresh_SkipsProjectsWithoutName(t *testing.T) {
	now := time.Now()
	api := &fakeAPI{pages: []notionapi.Page{
		projectPage("p1", "Alpha"),
		projectPage("p2", ""),
		{ID: "p3"}, // no properties at all
	}}
	s, _ := newTestStore(t, api, func() time.Time { return now })

	cache, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p1": "Alpha"}, cache.Projects)
}

func TestCacheName_NilAndUnknown(t *testing.T) {
	var nilCache *Cache
	_, ok := nilCache.Name("p1")
	assert.False(t, ok)

	cache := &Cache{Projects: map[string]string{"p1": "Alpha"}}
	_, ok = cache.Name("")
	assert.False(t, ok)
	_, ok = cache.Name("p2")
	assert.False(t, ok)
}
