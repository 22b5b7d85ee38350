package session

import (
	"net/url"
	"strings"
)

// knownDomains are sites the downloader is known to handle well. Matching is
// by host suffix so subdomains like www. and m. pass.
var knownDomains = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"twitch.tv",
	"tiktok.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"facebook.com",
	"reddit.com",
	"soundcloud.com",
	"dailymotion.com",
}

// classifyURL buckets raw input into recognized / plausible / invalid.
type urlClass int

const (
	urlInvalid urlClass = iota
	urlGeneric
	urlRecognized
)

func classifyURL(raw string) urlClass {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return urlInvalid
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return urlInvalid
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return urlInvalid
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return urlInvalid
	}

	for _, domain := range knownDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return urlRecognized
		}
	}
	return urlGeneric
}
