package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ConnLimiter 单 IP 建连速率限制（令牌桶）
type ConnLimiter struct {
	limiters map[string]*ipLimiter
	mu       sync.Mutex

	limit rate.Limit
	burst int
	idle  time.Duration // 超过该时长未使用的记录会被清理
	now   func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewConnLimiter 创建建连限制器
func NewConnLimiter(perSecond float64, burst int) *ConnLimiter {
	return &ConnLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

// Allow 检查是否允许该 IP 建立新连接
func (cl *ConnLimiter) Allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	entry, ok := cl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.limiters[ip] = entry
	}
	entry.lastSeen = now

	if !entry.limiter.AllowN(now, 1) {
		log.Warn().Str("ip", ip).Msg("⚠️ 建连过于频繁")
		return false
	}
	return true
}

// Len 当前记录的 IP 数量
func (cl *ConnLimiter) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.limiters)
}

// Cleanup 清理长时间未出现的 IP，返回清理数量
func (cl *ConnLimiter) Cleanup() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	removed := 0
	for ip, entry := range cl.limiters {
		if now.Sub(entry.lastSeen) > cl.idle {
			delete(cl.limiters, ip)
			removed++
		}
	}
	return removed
}

// cleanupLoop 定期清理，done 关闭后退出
func (cl *ConnLimiter) cleanupLoop(done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			cl.Cleanup()
		}
	}
}

// newMessageLimiter 单连接消息速率
func newMessageLimiter(perSecond float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// --- 来源验证 ---

// OriginChecker 来源验证器
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器，为空或包含 "*" 时放行所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{
		allowedOrigins: make(map[string]bool),
		allowAll:       len(origins) == 0,
	}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(strings.TrimRight(origin, "/"))] = true
	}

	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 终端客户端不带 Origin
		return true
	}

	return oc.allowedOrigins[strings.ToLower(origin)]
}

// Origins 允许的 http(s) 来源列表，allowAll 时为空
func (oc *OriginChecker) Origins() []string {
	if oc.allowAll {
		return nil
	}
	origins := make([]string, 0, len(oc.allowedOrigins))
	for origin := range oc.allowedOrigins {
		if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			origins = append(origins, origin)
		}
	}
	return origins
}

// --- IP 白名单/黑名单 ---

// IPFilter IP 过滤器
type IPFilter struct {
	whitelist map[string]bool
	blacklist map[string]bool
	mu        sync.RWMutex
}

// NewIPFilter 创建 IP 过滤器；白名单非空时只放行白名单内的 IP
func NewIPFilter(allowed, blocked []string) *IPFilter {
	f := &IPFilter{
		whitelist: make(map[string]bool),
		blacklist: make(map[string]bool),
	}
	for _, ip := range allowed {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.AddToWhitelist(ip)
		}
	}
	for _, ip := range blocked {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.AddToBlacklist(ip)
		}
	}
	return f
}

// AddToWhitelist 添加到白名单
func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whitelist[ip] = true
}

// AddToBlacklist 添加到黑名单
func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[ip] = true
}

// IsAllowed 检查 IP 是否允许
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.whitelist) > 0 && !f.whitelist[ip] {
		return false
	}
	return !f.blacklist[ip]
}

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// 取第一个 IP（最原始的客户端）
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
