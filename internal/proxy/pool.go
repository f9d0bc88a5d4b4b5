package proxy

import (
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// ProxyPool rotates through a list of proxies, skipping ones that failed recently
type ProxyPool struct {
	proxies  []*url.URL
	index    int
	mu       sync.Mutex
	failed   map[string]time.Time
	cooldown time.Duration
}

// NewProxyPool parses the given proxy URLs. Unparseable entries are dropped with a warning.
func NewProxyPool(proxies []string) *ProxyPool {
	p := &ProxyPool{
		failed:   make(map[string]time.Time),
		cooldown: DefaultCooldown,
	}
	for _, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			log.Warn().Str("proxy", raw).Msg("Ignoring invalid proxy URL")
			continue
		}
		p.proxies = append(p.proxies, u)
	}
	return p
}

// Len returns the number of usable proxies
func (p *ProxyPool) Len() int {
	return len(p.proxies)
}

// GetNext returns the next healthy proxy, or nil when the pool is empty
func (p *ProxyPool) GetNext() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return nil
	}

	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		key := proxy.String()
		if failTime, ok := p.failed[key]; ok {
			if time.Since(failTime) < p.cooldown {
				if p.index == start {
					// every proxy is cooling down
					return proxy
				}
				continue
			}
			delete(p.failed, key)
		}

		return proxy
	}
}

// MarkFailed marks a proxy as failed so it will be skipped for a while
func (p *ProxyPool) MarkFailed(proxy *url.URL) {
	if proxy == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy.String()] = time.Now()
}

// MarkHealthy clears the failure status of a proxy
func (p *ProxyPool) MarkHealthy(proxy *url.URL) {
	if proxy == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy.String())
}
