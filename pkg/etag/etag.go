// Package etag computes weak validators for JSON list responses.
package etag

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Of returns a weak ETag for body.
func Of(body []byte) string {
	return `W/"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// Match reports whether an If-None-Match header value matches tag.
func Match(ifNoneMatch, tag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if strings.TrimSpace(ifNoneMatch) == "*" {
		return true
	}
	want := strings.TrimPrefix(tag, "W/")
	for _, part := range strings.Split(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(part), "W/") == want {
			return true
		}
	}
	return false
}
