package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IPWhitelist returns a middleware that only allows requests from the given
// addresses or CIDR ranges. If the list is empty, all IPs are allowed.
// Used in front of the admin routes.
func IPWhitelist(entries []string) gin.HandlerFunc {
	exact := make(map[string]bool, len(entries))
	var nets []*net.IPNet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
			continue
		}
		exact[e] = true
	}
	open := len(exact) == 0 && len(nets) == 0

	allowed := func(ip string) bool {
		if exact[ip] {
			return true
		}
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return false
		}
		for _, n := range nets {
			if n.Contains(parsed) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		if open || allowed(c.ClientIP()) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}
