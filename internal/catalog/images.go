package catalog

import (
	"encoding/json"
	"strings"
)

// ParseImages reads the images column. Older rows hold a comma separated
// list instead of a JSON array; both are accepted and blanks are dropped.
func ParseImages(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var images []string
		if err := json.Unmarshal([]byte(raw), &images); err == nil {
			return compact(images)
		}
	}

	return compact(strings.Split(raw, ","))
}

func compact(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
