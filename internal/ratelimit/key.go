package ratelimit

import "strings"

// KeyForIP builds the limiter key of a client address. Empty addresses are not throttled.
func KeyForIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	return "ip:" + ip
}
