package service

import "strings"

// splitPath breaks a request path into its non-empty components and
// reports whether the original path ended in a slash, which is this
// service's convention for "the caller means a directory here" on PUT.
func splitPath(requestPath string) (parts []string, trailingSlash bool) {
	trimmed := strings.Trim(requestPath, "/")
	trailingSlash = strings.HasSuffix(requestPath, "/")
	if trimmed == "" {
		return nil, trailingSlash
	}
	return strings.Split(trimmed, "/"), trailingSlash
}
