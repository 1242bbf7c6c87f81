package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"employee-role-api/pkg/response"

	"golang.org/x/time/rate"
)

const (
	defaultMaxClients = 10000
	clientStaleAfter  = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware throttles login attempts per client IP. The client IP
// is the socket peer; forwarding headers are only read when the peer is a
// trusted proxy.
type RateLimitMiddleware struct {
	rpm            int
	path           string
	trustedProxies []netip.Prefix
	maxClients     int
	mu             sync.Mutex
	clients        map[string]*clientLimiter
}

// NewRateLimitMiddleware accepts trusted proxies as IPs or CIDR ranges;
// entries that parse as neither are ignored.
func NewRateLimitMiddleware(loginRPM int, trustedProxies []string) *RateLimitMiddleware {
	if loginRPM <= 0 {
		loginRPM = 10
	}

	return &RateLimitMiddleware{
		rpm:            loginRPM,
		path:           "/api/v1/login",
		trustedProxies: parseProxies(trustedProxies),
		maxClients:     defaultMaxClients,
		clients:        map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != m.path {
			next.ServeHTTP(w, r)
			return
		}

		if !m.getLimiter(m.clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			response.TooManyRequests(w, "Too many login attempts")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if client, exists := m.clients[clientIP]; exists {
		client.lastSeen = now
		return client.limiter
	}

	if len(m.clients) >= m.maxClients {
		m.evictLocked(now)
	}

	created := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.rpm)), m.rpm),
		lastSeen: now,
	}
	m.clients[clientIP] = created

	return created.limiter
}

// evictLocked drops stale clients, then the least recently seen ones until
// there is room for one more.
func (m *RateLimitMiddleware) evictLocked(now time.Time) {
	cutoff := now.Add(-clientStaleAfter)
	for ip, client := range m.clients {
		if client.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}

	for len(m.clients) >= m.maxClients {
		var oldestIP string
		var oldest time.Time
		for ip, client := range m.clients {
			if oldestIP == "" || client.lastSeen.Before(oldest) {
				oldestIP, oldest = ip, client.lastSeen
			}
		}
		delete(m.clients, oldestIP)
	}
}

// clientIP returns the peer address, or, behind a trusted proxy, the
// right-most X-Forwarded-For hop that is not itself a trusted proxy.
func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !m.isTrusted(peer) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !m.isTrusted(hop) {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return peer
}

func (m *RateLimitMiddleware) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range m.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	host, _, err := net.SplitHostPort(remoteAddr)
	if err == nil && host != "" {
		return host
	}
	if remoteAddr == "" {
		return "unknown"
	}
	return remoteAddr
}

func parseProxies(entries []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return prefixes
}
