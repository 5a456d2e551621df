package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateID_Unique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestStore_SaveAndFind(t *testing.T) {
	store := NewStore(newMemoryStore(), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{ID: "s1", EndPoint: "https://app.example/cb"}))

	sess, err := store.Find(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "https://app.example/cb", sess.EndPoint)
}

func TestStore_FindAbsent(t *testing.T) {
	store := NewStore(newMemoryStore(), time.Hour)

	sess, err := store.Find(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, sess)

	sess, err = store.Find(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestStore_SaveRequiresID(t *testing.T) {
	store := NewStore(newMemoryStore(), time.Hour)
	require.Error(t, store.Save(context.Background(), Session{EndPoint: "https://app.example/cb"}))
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(newMemoryStore(), 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{ID: "s1", EndPoint: "https://app.example/cb"}))
	time.Sleep(20 * time.Millisecond)

	sess, err := store.Find(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestCookie_RoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, "sess-id", CookieOptions{MaxAge: time.Hour})

	res := w.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Equal(t, "sess-id", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	require.Equal(t, 3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	require.Equal(t, "sess-id", IDFromRequest(req))
}

func TestCookie_Clear(t *testing.T) {
	w := httptest.NewRecorder()
	ClearCookie(w, CookieOptions{})

	res := w.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestCookie_AbsentFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, IDFromRequest(req))
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]memoryEntry{}}
}

func (m *memoryStore) Store(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoryEntry{payload: payload, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *memoryStore) Retrieve(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.liveLocked(key)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(entry.payload, dest)
}

func (m *memoryStore) Take(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.liveLocked(key)
	if !ok {
		return false, nil
	}
	delete(m.data, key)
	return true, json.Unmarshal(entry.payload, dest)
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStore) liveLocked(key string) (memoryEntry, bool) {
	entry, ok := m.data[key]
	if !ok {
		return memoryEntry{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.data, key)
		return memoryEntry{}, false
	}
	return entry, true
}
