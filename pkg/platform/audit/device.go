package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceFromUserAgent condenses a User-Agent header into "<browser> on <os>",
// with a "mobile" or "bot" marker. It returns "" for an empty header.
func DeviceFromUserAgent(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	ua := useragent.New(header)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "bot"
		}
		return "bot: " + name
	}

	name, _ := ua.Browser()
	os := ua.OSInfo().Name
	var b strings.Builder
	switch {
	case name != "" && os != "":
		b.WriteString(name + " on " + os)
	case name != "":
		b.WriteString(name)
	case os != "":
		b.WriteString(os)
	default:
		b.WriteString("unknown")
	}
	if ua.Mobile() {
		b.WriteString(" (mobile)")
	}
	return b.String()
}
