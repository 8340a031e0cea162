// Package imageproxy serve imagens remotas permitidas pela ImagePolicy.
package imageproxy

import (
	"net/url"
	"strings"

	"shiro/internal/buildconfig"
)

// Allowed diz se u casa com algum RemotePattern (protocolo + hostname glob).
func Allowed(policy buildconfig.ImagePolicy, u *url.URL) bool {
	if u == nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range policy.RemotePatterns {
		if !strings.EqualFold(strings.TrimSuffix(p.Protocol, ":"), u.Scheme) {
			continue
		}
		if MatchHostname(strings.ToLower(p.Hostname), host) {
			return true
		}
	}
	return false
}

// MatchHostname compara por labels: "*" casa exatamente um label e "**" casa
// um ou mais. "**" sozinho aceita qualquer host.
//
//	*.example.com  -> img.example.com, não a.b.example.com
//	**.example.com -> a.b.example.com
func MatchHostname(pattern, host string) bool {
	if pattern == "" || host == "" {
		return false
	}
	return matchLabels(strings.Split(pattern, "."), strings.Split(host, "."))
}

func matchLabels(pat, host []string) bool {
	if len(pat) == 0 {
		return len(host) == 0
	}
	switch pat[0] {
	case "**":
		for i := 1; i <= len(host); i++ {
			if matchLabels(pat[1:], host[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(host) > 0 && matchLabels(pat[1:], host[1:])
	default:
		return len(host) > 0 && pat[0] == host[0] && matchLabels(pat[1:], host[1:])
	}
}
