// Package hostman keeps remote report downloads polite: robots.txt is
// honoured per host and each host gets its own token bucket.
package hostman

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// ErrDisallowed is returned for URLs the host's robots.txt excludes.
var ErrDisallowed = errors.New("hostman: disallowed by robots.txt")

// hostInfo stores fetch policy & limiter for one host.
type hostInfo struct {
	robots  *robotstxt.RobotsData // nil if fetch failed
	limiter *rate.Limiter
}

// Manager holds hostInfo for every host we touch.
type Manager struct {
	mu        sync.Mutex
	hosts     map[string]*hostInfo
	client    *http.Client
	userAgent string
	rps       float64
	timeout   time.Duration // robots.txt download timeout
}

// New returns a ready Manager. client may be nil for http.DefaultClient.
func New(client *http.Client, ua string, rps float64, robotsTimeout time.Duration) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	if rps <= 0 {
		rps = 1
	}
	if robotsTimeout <= 0 {
		robotsTimeout = 5 * time.Second
	}
	return &Manager{
		hosts:     make(map[string]*hostInfo),
		client:    client,
		userAgent: ua,
		rps:       rps,
		timeout:   robotsTimeout,
	}
}

// UserAgent is the agent string sent with every request.
func (m *Manager) UserAgent() string { return m.userAgent }

// Acquire blocks until a request to u is allowed by the host's rate limit.
// It returns ErrDisallowed when robots.txt excludes the path.
func (m *Manager) Acquire(ctx context.Context, u *url.URL) error {
	h := m.host(ctx, u)
	if h.robots != nil && !h.robots.FindGroup(m.userAgent).Test(u.Path) {
		return ErrDisallowed
	}
	return h.limiter.Wait(ctx)
}

// host returns the policy of u's host, fetching robots.txt on first use.
// The fetch runs unlocked so a slow host never stalls the others; when two
// callers race, the first stored entry wins.
func (m *Manager) host(ctx context.Context, u *url.URL) *hostInfo {
	m.mu.Lock()
	h, ok := m.hosts[u.Host]
	m.mu.Unlock()
	if ok {
		return h
	}

	robots := m.fetchRobots(ctx, u.Scheme, u.Host)

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hosts[u.Host]; ok {
		return h
	}
	burst := int(m.rps)
	if burst < 1 {
		burst = 1
	}
	h = &hostInfo{
		limiter: rate.NewLimiter(rate.Limit(m.rps), burst),
		robots:  robots,
	}
	m.hosts[u.Host] = h
	return h
}

// --- helpers -------------------------------------------------------------

func (m *Manager) fetchRobots(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil // treat as no robots file
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return robots
}
