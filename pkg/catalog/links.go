package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadLinks reads a name -> URL table. A missing path yields an empty table.
func LoadLinks(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}
	links := make(map[string]string)
	if err := yaml.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("failed to parse links file: %w", err)
	}
	return links, nil
}

// ResolveURL picks the point's own URL when valid, then the link table entry,
// otherwise the empty string.
func ResolveURL(own, name string, links map[string]string) string {
	if isHTTPURL(own) {
		return strings.TrimSpace(own)
	}
	if l, ok := links[name]; ok && isHTTPURL(l) {
		return strings.TrimSpace(l)
	}
	return ""
}

func isHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
