package admin

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-catalog/pkg/backend"
	"game-catalog/pkg/models"
	"game-catalog/pkg/storage"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore() storage.Store {
	return storage.NewFileStore(afero.NewMemMapFs(), "/session.json")
}

func TestSession_TwoHourWindow(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)}
	store := newStore()
	s := NewSession(store, c.now)

	ok, err := s.Login("secret")
	require.NoError(t, err)
	require.True(t, ok)

	raw, _ := store.Get(StartStorageKey)
	assert.Equal(t, strconv.FormatInt(c.t.UnixMilli(), 10), raw)

	c.t = c.t.Add(time.Hour + 59*time.Minute)
	key, valid := s.Current()
	assert.True(t, valid)
	assert.Equal(t, "secret", key)

	c.t = c.t.Add(2 * time.Minute)
	_, valid = s.Current()
	assert.False(t, valid)

	_, present := store.Get(KeyStorageKey)
	assert.False(t, present, "expiry clears the key")
	_, present = store.Get(StartStorageKey)
	assert.False(t, present, "expiry clears the start")
}

func TestSession_PartialStateLogsOut(t *testing.T) {
	store := newStore()
	require.NoError(t, store.Set(KeyStorageKey, "secret"))
	s := NewSession(store, nil)

	assert.False(t, s.LoggedIn())
	_, present := store.Get(KeyStorageKey)
	assert.False(t, present)

	require.NoError(t, store.Set(KeyStorageKey, "secret"))
	require.NoError(t, store.Set(StartStorageKey, "yesterday"))
	assert.False(t, s.LoggedIn(), "unparseable start")
}

// removeCounter counts Remove calls on top of a store
type removeCounter struct {
	storage.Store
	removes int
}

func (r *removeCounter) Remove(key string) error {
	r.removes++
	return r.Store.Remove(key)
}

func TestSession_EmptyStoreIsLeftAlone(t *testing.T) {
	store := &removeCounter{Store: newStore()}
	s := NewSession(store, nil)

	assert.False(t, s.LoggedIn())
	assert.False(t, s.LoggedIn())
	assert.Zero(t, store.removes)

	require.NoError(t, store.Set(StartStorageKey, "1"))
	assert.False(t, s.LoggedIn())
	assert.Equal(t, 2, store.removes, "a leftover start is cleared")
}

func TestSession_LoginIgnoresEmptyAndLogoutIsIdempotent(t *testing.T) {
	s := NewSession(newStore(), nil)
	ok, err := s.Login("")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.LoggedIn())

	_, err = s.Login("k")
	require.NoError(t, err)
	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout())
	assert.False(t, s.LoggedIn())
}

type fakeAPI struct {
	mu        sync.Mutex
	calls     []string
	pending   []models.Game
	overview  *models.StorageOverview
	files     map[string][]models.StoredFile
	err       error
	deleteErr map[string]error
	rejected  int
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeAPI) Pending(ctx context.Context) ([]models.Game, error) {
	if err := f.record("pending"); err != nil {
		return nil, err
	}
	return f.pending, nil
}

func (f *fakeAPI) Approve(ctx context.Context, id string) (*models.ActionResult, error) {
	if err := f.record("approve " + id); err != nil {
		return nil, err
	}
	return &models.ActionResult{Success: true}, nil
}

func (f *fakeAPI) Reject(ctx context.Context, id string) (*models.ActionResult, error) {
	if err := f.record("reject " + id); err != nil {
		return nil, err
	}
	return &models.ActionResult{Success: true, FilesDeleted: f.rejected}, nil
}

func (f *fakeAPI) Storage(ctx context.Context) (*models.StorageOverview, error) {
	if err := f.record("storage"); err != nil {
		return nil, err
	}
	return f.overview, nil
}

func (f *fakeAPI) Files(ctx context.Context, id string) (*models.FileList, error) {
	if err := f.record("files " + id); err != nil {
		return nil, err
	}
	return &models.FileList{Files: f.files[id]}, nil
}

func (f *fakeAPI) DeleteFile(ctx context.Context, id, name string) error {
	if err := f.record("delete " + id + "/" + name); err != nil {
		return err
	}
	return f.deleteErr[name]
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeCatalog []models.Game

func (c fakeCatalog) Games(ctx context.Context) ([]models.Game, error) { return c, nil }

func loggedIn(t *testing.T, api *fakeAPI, confirm Confirmer) (*Dashboard, *string) {
	t.Helper()
	s := NewSession(newStore(), nil)
	_, err := s.Login("secret")
	require.NoError(t, err)
	var usedKey string
	connect := func(key string) API {
		usedKey = key
		return api
	}
	return NewDashboard(s, connect, confirm, nil, nil), &usedKey
}

func TestDashboard_UsesSessionKey(t *testing.T) {
	api := &fakeAPI{pending: []models.Game{{ID: "p"}}}
	d, key := loggedIn(t, api, nil)

	games, err := d.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Equal(t, "secret", *key)
}

func TestDashboard_LoggedOutMakesNoCalls(t *testing.T) {
	api := &fakeAPI{}
	d := NewDashboard(NewSession(newStore(), nil), func(string) API { return api }, nil, nil, nil)

	_, err := d.Pending(context.Background())
	assert.ErrorIs(t, err, ErrLoggedOut)
	assert.Empty(t, api.Calls())
}

func TestDashboard_UnauthorizedForcesLogout(t *testing.T) {
	api := &fakeAPI{err: backend.ErrUnauthorized}
	d, _ := loggedIn(t, api, nil)

	res, err := d.Approve(context.Background(), "x")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.Nil(t, res, "no success handling")
	assert.False(t, d.Session().LoggedIn())
}

func TestDashboard_LoadUnauthorizedForcesLogout(t *testing.T) {
	api := &fakeAPI{err: backend.ErrUnauthorized}
	d, _ := loggedIn(t, api, nil)

	res, err := d.Load(context.Background())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.True(t, res.LoggedOut)
	assert.False(t, d.Session().LoggedIn())
}

func TestDashboard_LoadFetchesBoth(t *testing.T) {
	api := &fakeAPI{pending: []models.Game{{ID: "p"}}, overview: &models.StorageOverview{TotalFiles: 3}}
	d, _ := loggedIn(t, api, nil)

	res, err := d.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Pending, 1)
	assert.Equal(t, 3, res.Storage.TotalFiles)
	assert.ElementsMatch(t, []string{"pending", "storage"}, api.Calls())
}

func TestDashboard_DeclinedConfirmationSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	var prompts []string
	d, _ := loggedIn(t, api, ConfirmFunc(func(p string) bool {
		prompts = append(prompts, p)
		return false
	}))

	_, err := d.Approve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = d.Reject(context.Background(), "a")
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = d.DeleteFile(context.Background(), "a", "f.zip")
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = d.DeleteAllFiles(context.Background(), "a")
	assert.ErrorIs(t, err, ErrCancelled)

	assert.Empty(t, api.Calls())
	assert.Equal(t, []string{
		"Approve this game?",
		"DELETE this game AND ALL ITS FILES permanently?",
		"Delete f.zip? This cannot be undone.",
		"DELETE ALL FILES for a? This cannot be undone!",
	}, prompts)
	assert.Equal(t, "", UserMessage(ErrCancelled))
}

func TestDashboard_RejectReportsDeletedFilesAndRefetches(t *testing.T) {
	api := &fakeAPI{rejected: 2, overview: &models.StorageOverview{}}
	d, _ := loggedIn(t, api, nil)

	res, err := d.Reject(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, "Game rejected! (2 files deleted)", res.Message)
	calls := api.Calls()
	assert.Equal(t, "reject bad", calls[0])
	assert.ElementsMatch(t, []string{"pending", "storage"}, calls[1:])

	res, err = d.Approve(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "Game approved!", res.Message)
}

func TestDashboard_DeleteFileRefetches(t *testing.T) {
	api := &fakeAPI{files: map[string][]models.StoredFile{"g": {{Key: "games/g/b.zip"}}}, overview: &models.StorageOverview{}}
	d, _ := loggedIn(t, api, nil)

	res, err := d.DeleteFile(context.Background(), "g", "a.zip")
	require.NoError(t, err)
	assert.Equal(t, "File deleted", res.Message)
	assert.Equal(t, []string{"delete g/a.zip", "files g", "storage"}, api.Calls())
	assert.Len(t, res.Files.Files, 1)
}

func TestDashboard_DeleteAllFilesIsSequentialAndReportsAttempted(t *testing.T) {
	api := &fakeAPI{
		files: map[string][]models.StoredFile{"g": {
			{Key: "games/g/1.bin"}, {Key: "games/g/2.bin"}, {Key: "games/g/3.bin"},
		}},
		deleteErr: map[string]error{"2.bin": errors.New("boom")},
		overview:  &models.StorageOverview{},
	}
	d, _ := loggedIn(t, api, nil)

	res, err := d.DeleteAllFiles(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 3 files", res.Message)
	assert.Equal(t, []string{"files g", "delete g/1.bin", "delete g/2.bin", "delete g/3.bin", "storage"}, api.Calls())
}

func TestDashboard_Orphans(t *testing.T) {
	api := &fakeAPI{
		pending: []models.Game{{ID: "waiting"}},
		overview: &models.StorageOverview{Games: map[string]models.GameStorage{
			"live":    {FileCount: 1},
			"waiting": {FileCount: 1},
			"zombie":  {FileCount: 2, TotalSize: 10},
			"ghost":   {FileCount: 1, TotalSize: 5},
		}},
	}
	s := NewSession(newStore(), nil)
	_, err := s.Login("k")
	require.NoError(t, err)
	d := NewDashboard(s, func(string) API { return api }, nil, fakeCatalog{{ID: "live"}}, nil)

	orphans, err := d.Orphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Orphan{{ID: "ghost", FileCount: 1, TotalSize: 5}, {ID: "zombie", FileCount: 2, TotalSize: 10}}, orphans)
}

func TestDispatch(t *testing.T) {
	api := &fakeAPI{overview: &models.StorageOverview{}, files: map[string][]models.StoredFile{}}
	d := NewDashboard(NewSession(newStore(), nil), func(string) API { return api }, nil, nil, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Request{Action: "login", Key: ""})
	require.NoError(t, err)
	assert.True(t, res.LoggedOut)

	res, err = d.Dispatch(ctx, Request{Action: "login", Key: "secret"})
	require.NoError(t, err)
	assert.False(t, res.LoggedOut)

	res, err = d.Dispatch(ctx, Request{Action: "view-files", ID: "g"})
	require.NoError(t, err)
	assert.Equal(t, "g", res.FilesFor)

	_, err = d.Dispatch(ctx, Request{Action: "refresh-storage"})
	require.NoError(t, err)

	res, err = d.Dispatch(ctx, Request{Action: "logout"})
	require.NoError(t, err)
	assert.True(t, res.LoggedOut)
	assert.False(t, d.Session().LoggedIn())

	_, err = d.Dispatch(ctx, Request{Action: "explode"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	for _, action := range []string{"approve", "reject", "view-files", "delete-file", "delete-all-files", "logout", "login", "refresh-pending", "refresh-storage"} {
		assert.Contains(t, Actions, action)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Error: Game not found", UserMessage(&backend.RemoteError{Op: "approve", Message: "Game not found"}))
	assert.Equal(t, "Session ended. Please log in again.", UserMessage(backend.ErrUnauthorized))
	assert.Equal(t, "Error: boom", UserMessage(errors.New("boom")))
}
