// Package ratelimit implements fixed-window request counters keyed by client
// IP, grouped into independently configured zones.
package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Zone is one limiter policy: at most Limit requests per Window per key.
type Zone struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// Zone names.
const (
	ZoneGeneral = "general"
	ZoneAuth    = "auth"
	ZoneEmail   = "email"
)

// DefaultZones returns the general, auth and email policies.
func DefaultZones() []Zone {
	return []Zone{
		{
			Name:    ZoneGeneral,
			Limit:   100,
			Window:  15 * time.Minute,
			Message: "Muitas requisições deste IP, tente novamente mais tarde.",
		},
		{
			Name:    ZoneAuth,
			Limit:   10,
			Window:  15 * time.Minute,
			Message: "Muitas tentativas de autenticação, tente novamente mais tarde.",
		},
		{
			Name:    ZoneEmail,
			Limit:   25,
			Window:  time.Hour,
			Message: "Limite de envio de emails excedido. Tente novamente em uma hora.",
		},
	}
}

// Limiter holds one Counter per zone. Counters live in process memory only.
type Limiter struct {
	zones    map[string]Zone
	counters map[string]*Counter
}

// New builds a Limiter for zones. now is the clock used for window
// boundaries; nil means time.Now.
func New(now func() time.Time, zones ...Zone) *Limiter {
	if now == nil {
		now = time.Now
	}
	l := &Limiter{
		zones:    make(map[string]Zone, len(zones)),
		counters: make(map[string]*Counter, len(zones)),
	}
	for _, z := range zones {
		l.zones[z.Name] = z
		l.counters[z.Name] = NewCounter(z.Limit, z.Window, now)
	}
	return l
}

// Zone returns the policy registered under name.
func (l *Limiter) Zone(name string) (Zone, bool) {
	z, ok := l.zones[name]
	return z, ok
}

// Counter returns the counter backing zone name. It panics on an unknown
// zone, which is a wiring error.
func (l *Limiter) Counter(name string) *Counter {
	c, ok := l.counters[name]
	if !ok {
		panic(fmt.Sprintf("ratelimit: unknown zone %q", name))
	}
	return c
}

// Admit counts one request from ip against zone and reports whether it is
// within the zone's limit.
func (l *Limiter) Admit(ip, zone string) bool {
	return l.Counter(zone).Admit(ip)
}

type window struct {
	start time.Time
	count int
}

// Counter is a fixed-window counter. Each key gets its own window that
// starts with the key's first request and lasts the configured length; the
// count resets when it elapses.
//
// Counter also satisfies httprate.LimitCounter. It reports no previous
// window, so httprate's sliding estimate reduces to this fixed window.
type Counter struct {
	mu        sync.Mutex
	limit     int
	length    time.Duration
	now       func() time.Time
	windows   map[string]*window
	lastSweep time.Time
}

// NewCounter returns a Counter allowing limit requests per length.
func NewCounter(limit int, length time.Duration, now func() time.Time) *Counter {
	if now == nil {
		now = time.Now
	}
	return &Counter{
		limit:     limit,
		length:    length,
		now:       now,
		windows:   make(map[string]*window),
		lastSweep: now(),
	}
}

// counterKey maps an httprate key to the bare client key. httprate joins
// its key functions with a trailing ':'.
func counterKey(key string) string {
	return strings.TrimSuffix(key, ":")
}

// current returns the live window for key, opening a new one if the old one
// elapsed. c.mu must be held.
func (c *Counter) current(key string) *window {
	key = counterKey(key)
	now := c.now()
	if now.Sub(c.lastSweep) >= c.length {
		c.sweep(now)
	}
	w, ok := c.windows[key]
	if !ok || now.Sub(w.start) >= c.length {
		w = &window{start: now}
		c.windows[key] = w
	}
	return w
}

// sweep drops elapsed windows. c.mu must be held.
func (c *Counter) sweep(now time.Time) {
	for k, w := range c.windows {
		if now.Sub(w.start) >= c.length {
			delete(c.windows, k)
		}
	}
	c.lastSweep = now
}

// Admit counts a request for key and reports whether it is allowed.
// Rejected requests are not counted.
func (c *Counter) Admit(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.current(key)
	if w.count >= c.limit {
		return false
	}
	w.count++
	return true
}

// Status returns the number of requests still allowed for key and when its
// window resets.
func (c *Counter) Status(key string) (remaining int, reset time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.current(key)
	remaining = c.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, w.start.Add(c.length)
}

// RetryAfter returns how long until key's window resets.
func (c *Counter) RetryAfter(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	w, ok := c.windows[counterKey(key)]
	if !ok || now.Sub(w.start) >= c.length {
		return c.length
	}
	return w.start.Add(c.length).Sub(now)
}

// Limit returns the maximum count per window.
func (c *Counter) Limit() int { return c.limit }

// Config implements httprate.LimitCounter. The limit and window given at
// construction take precedence.
func (c *Counter) Config(requestLimit int, windowLength time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit == 0 {
		c.limit = requestLimit
	}
	if c.length == 0 {
		c.length = windowLength
	}
}

// Increment implements httprate.LimitCounter.
func (c *Counter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy implements httprate.LimitCounter. The httprate window is
// ignored in favor of the key's own fixed window.
func (c *Counter) IncrementBy(key string, _ time.Time, amount int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current(key).count += amount
	return nil
}

// Get implements httprate.LimitCounter. It always reports an empty previous
// window.
func (c *Counter) Get(key string, _, _ time.Time) (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current(key).count, 0, nil
}
