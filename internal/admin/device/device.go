// Package device turns User-Agent headers into short display labels for
// admin sessions and audit records.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "Unknown Device"

// ParseUserAgent returns a label such as "Chrome on Mac OS X". Mobile
// devices are named by platform ("Safari on iPhone").
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknown
	}
	ua := useragent.New(raw)

	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	var platform string
	if ua.Mobile() {
		platform = ua.Platform()
	} else {
		platform = ua.OSInfo().Name
	}
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = strings.TrimSpace(ua.Platform())
	}
	if platform == "" {
		platform = "Unknown OS"
	}
	return browser + " on " + platform
}
