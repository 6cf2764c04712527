// Package revalidate реализует сигнал инвалидации кэшированных представлений.
package revalidate

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
)

// Revalidator помечает путь и его подпути устаревшими.
type Revalidator interface {
	RevalidatePath(ctx context.Context, path string)
}

// Chain рассылает сигнал нескольким получателям по порядку.
type Chain []Revalidator

// RevalidatePath передаёт путь каждому получателю цепочки.
func (c Chain) RevalidatePath(ctx context.Context, path string) {
	for _, r := range c {
		if r != nil {
			r.RevalidatePath(ctx, path)
		}
	}
}

type entry struct {
	path        string
	contentType string
	body        []byte
}

// PathCache хранит успешные ответы на GET-запросы по URI запроса.
type PathCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	// gen увеличивается при каждой инвалидации.
	gen uint64
}

// NewPathCache создаёт пустой кэш.
func NewPathCache() *PathCache {
	return &PathCache{entries: make(map[string]entry)}
}

// RevalidatePath удаляет записи для path и всех путей под ним.
func (c *PathCache) RevalidatePath(_ context.Context, path string) {
	path = strings.TrimRight(path, "/")

	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for key, e := range c.entries {
		if matches(e.path, path) {
			delete(c.entries, key)
		}
	}
}

// Len возвращает количество записей в кэше.
func (c *PathCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func matches(entryPath, path string) bool {
	if path == "" {
		return true
	}
	return entryPath == path || strings.HasPrefix(entryPath, path+"/")
}

// Middleware отдаёт закэшированный ответ или сохраняет новый ответ со статусом 200.
func (c *PathCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()

		c.mu.RLock()
		e, ok := c.entries[key]
		gen := c.gen
		c.mu.RUnlock()

		if ok {
			if e.contentType != "" {
				w.Header().Set("Content-Type", e.contentType)
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(e.body)
			return
		}

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		// Ответ, собранный до инвалидации, уже устарел.
		if c.gen != gen {
			return
		}
		c.entries[key] = entry{
			path:        strings.TrimRight(r.URL.Path, "/"),
			contentType: w.Header().Get("Content-Type"),
			body:        rec.buf.Bytes(),
		}
	})
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == http.StatusOK {
		r.buf.Write(b)
	}
	return r.ResponseWriter.Write(b)
}
