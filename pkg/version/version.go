package version

import "runtime/debug"

// Version is the application version, overridden at build time via -ldflags.
var Version = "v0.1.0"

// Revision returns the VCS revision embedded by the Go toolchain, shortened to
// 12 characters, or "" when the binary was built outside a checkout.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
