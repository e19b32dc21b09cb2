package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionValueKey = "session"
	sessionIDKey    = "sid"
)

// ErrNoBrowserSession is returned when a request-scoped store is used outside a request that
// went through the session middleware.
var ErrNoBrowserSession = errors.New("no browser session bound to context")

type carrierKey struct{}

// WithCarrier binds the browser session cookie to ctx.
func WithCarrier(ctx context.Context, s sessions.Session) context.Context {
	return context.WithValue(ctx, carrierKey{}, s)
}

// CarrierFromContext returns the browser session bound by WithCarrier.
func CarrierFromContext(ctx context.Context) (sessions.Session, bool) {
	s, ok := ctx.Value(carrierKey{}).(sessions.Session)
	return s, ok && s != nil
}

// CookieSessionRepository keeps the serialised session object inside the signed and
// encrypted session cookie itself.
type CookieSessionRepository struct{}

// NewCookieSessionRepository constructs the cookie repository.
func NewCookieSessionRepository() *CookieSessionRepository {
	return &CookieSessionRepository{}
}

// Load returns the raw session object, or nil when the browser has none.
func (r *CookieSessionRepository) Load(ctx context.Context) ([]byte, error) {
	carrier, ok := CarrierFromContext(ctx)
	if !ok {
		return nil, ErrNoBrowserSession
	}
	switch v := carrier.Get(sessionValueKey).(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected cookie session value %T", v)
	}
}

// Save stores raw in the cookie.
func (r *CookieSessionRepository) Save(ctx context.Context, raw []byte) error {
	carrier, ok := CarrierFromContext(ctx)
	if !ok {
		return ErrNoBrowserSession
	}
	carrier.Set(sessionValueKey, string(raw))
	if err := carrier.Save(); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// Delete removes the session object from the cookie.
func (r *CookieSessionRepository) Delete(ctx context.Context) error {
	carrier, ok := CarrierFromContext(ctx)
	if !ok {
		return ErrNoBrowserSession
	}
	carrier.Delete(sessionValueKey)
	if err := carrier.Save(); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// sessionKV is the server-side half of an id-keyed session store.
type sessionKV interface {
	get(ctx context.Context, id string) ([]byte, error)
	set(ctx context.Context, id string, raw []byte, ttl time.Duration) error
	del(ctx context.Context, id string) error
}

// KeyedSessionRepository stores only a random session id in the cookie and keeps the session
// object server side.
type KeyedSessionRepository struct {
	kv  sessionKV
	ttl time.Duration
}

// Load returns the raw session object, or nil when the browser has none.
func (r *KeyedSessionRepository) Load(ctx context.Context) ([]byte, error) {
	id, err := r.sessionID(ctx, false)
	if err != nil || id == "" {
		return nil, err
	}
	return r.kv.get(ctx, id)
}

// Save stores raw under the browser's session id, issuing one when needed.
func (r *KeyedSessionRepository) Save(ctx context.Context, raw []byte) error {
	id, err := r.sessionID(ctx, true)
	if err != nil {
		return err
	}
	return r.kv.set(ctx, id, raw, r.ttl)
}

// Delete drops the server-side object and forgets the session id.
func (r *KeyedSessionRepository) Delete(ctx context.Context) error {
	carrier, ok := CarrierFromContext(ctx)
	if !ok {
		return ErrNoBrowserSession
	}
	id, _ := carrier.Get(sessionIDKey).(string)
	if id == "" {
		return nil
	}
	if err := r.kv.del(ctx, id); err != nil {
		return err
	}
	carrier.Delete(sessionIDKey)
	if err := carrier.Save(); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

func (r *KeyedSessionRepository) sessionID(ctx context.Context, create bool) (string, error) {
	carrier, ok := CarrierFromContext(ctx)
	if !ok {
		return "", ErrNoBrowserSession
	}
	id, _ := carrier.Get(sessionIDKey).(string)
	if id != "" || !create {
		return id, nil
	}
	id = uuid.NewString()
	carrier.Set(sessionIDKey, id)
	if err := carrier.Save(); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return id, nil
}

// NewRedisSessionRepository keeps session objects in Redis under prefix+id with ttl.
func NewRedisSessionRepository(client sessionRedis, prefix string, ttl time.Duration) *KeyedSessionRepository {
	return &KeyedSessionRepository{kv: &redisSessionKV{client: client, prefix: prefix}, ttl: ttl}
}

// NewMemorySessionRepository keeps session objects in process memory.
func NewMemorySessionRepository(ttl time.Duration) *KeyedSessionRepository {
	return &KeyedSessionRepository{kv: &memorySessionKV{items: map[string]memorySession{}, now: time.Now}, ttl: ttl}
}

// sessionRedis is the subset of the Redis client the session store uses.
type sessionRedis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionKV struct {
	client sessionRedis
	prefix string
}

func (r *redisSessionKV) get(ctx context.Context, id string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return raw, nil
}

func (r *redisSessionKV) set(ctx context.Context, id string, raw []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *redisSessionKV) del(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

type memorySession struct {
	raw       []byte
	expiresAt time.Time
}

type memorySessionKV struct {
	mu    sync.Mutex
	items map[string]memorySession
	now   func() time.Time
}

func (m *memorySessionKV) get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && m.now().After(item.expiresAt) {
		delete(m.items, id)
		return nil, nil
	}
	return append([]byte(nil), item.raw...), nil
}

func (m *memorySessionKV) set(_ context.Context, id string, raw []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := memorySession{raw: append([]byte(nil), raw...)}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.items[id] = item
	return nil
}

func (m *memorySessionKV) del(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// FileSessionRepository persists a single session object on disk for the terminal client.
type FileSessionRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionRepository constructs a file repository at path.
func NewFileSessionRepository(path string) *FileSessionRepository {
	return &FileSessionRepository{path: path}
}

// Load returns the file contents, or nil when there is no file.
func (r *FileSessionRepository) Load(context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return raw, nil
}

// Save writes raw with owner-only permissions.
func (r *FileSessionRepository) Save(_ context.Context, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeFileAtomic(r.path, raw, 0o600)
}

// Delete removes the file.
func (r *FileSessionRepository) Delete(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
