package v1

import (
	"sync"
	"time"

	"starsoftflow/internal/importer"
)

// importEntry 注册表中的一个导入会话；mu 保证同一会话的事件串行处理
type importEntry struct {
	mu        sync.Mutex
	session   *importer.Session
	draftID   string
	logID     int64
	logged    bool
	expiresAt time.Time
}

// sessionRegistry 进行中的导入会话，闲置超过 ttl 后丢弃
type sessionRegistry struct {
	mu       sync.Mutex
	items    map[string]*importEntry
	ttl      time.Duration
	now      func() time.Time
	onExpire func(*importEntry)
}

func newSessionRegistry(ttl time.Duration, onExpire func(*importEntry)) *sessionRegistry {
	return &sessionRegistry{
		items:    make(map[string]*importEntry),
		ttl:      ttl,
		now:      time.Now,
		onExpire: onExpire,
	}
}

func (r *sessionRegistry) put(e *importEntry) {
	expired := r.sweep(func(items map[string]*importEntry, now time.Time) {
		e.expiresAt = now.Add(r.ttl)
		items[e.session.ID()] = e
	})
	r.expire(expired)
}

// get 命中时顺延过期时间
func (r *sessionRegistry) get(id string) (*importEntry, bool) {
	var (
		e  *importEntry
		ok bool
	)
	expired := r.sweep(func(items map[string]*importEntry, now time.Time) {
		e, ok = items[id]
		if ok {
			e.expiresAt = now.Add(r.ttl)
		}
	})
	r.expire(expired)
	return e, ok
}

func (r *sessionRegistry) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *sessionRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// sweep 在锁内清理过期项并执行 fn，返回被清理的项
func (r *sessionRegistry) sweep(fn func(map[string]*importEntry, time.Time)) []*importEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var expired []*importEntry
	for k, v := range r.items {
		if now.After(v.expiresAt) {
			expired = append(expired, v)
			delete(r.items, k)
		}
	}
	fn(r.items, now)
	return expired
}

func (r *sessionRegistry) expire(entries []*importEntry) {
	if r.onExpire == nil {
		return
	}
	for _, e := range entries {
		r.onExpire(e)
	}
}
