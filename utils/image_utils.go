package utils

import (
	"fmt"
	"strings"
)

// ExtractObjectPath extracts storage object path from full Firebase URL
func ExtractObjectPath(url string) (string, error) {
	const prefix = "https://storage.googleapis.com/"
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("URL does not point to Firebase Storage")
	}

	rest := strings.TrimPrefix(url, prefix)
	idx := strings.Index(rest, "/")
	if idx < 0 || idx == len(rest)-1 {
		return "", fmt.Errorf("URL has no object path")
	}

	return rest[idx+1:], nil
}
