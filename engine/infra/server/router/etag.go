package router

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseStrongETag extracts the first strong entity tag from an If-Match style header.
// An empty header yields "".
func ParseStrongETag(header string) (string, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return "", nil
	}
	first := strings.TrimSpace(strings.Split(trimmed, ",")[0])
	if first == "*" {
		return "", fmt.Errorf("%w: wildcard not supported", ErrInvalidETag)
	}
	if strings.HasPrefix(first, "W/") {
		return "", fmt.Errorf("%w: weak validators not supported", ErrInvalidETag)
	}
	value := strings.Trim(first, "\"")
	if value == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidETag)
	}
	return value, nil
}

// ParseVersionETag reads a configuration version from an If-Match header.
// It returns nil when the header is absent.
func ParseVersionETag(header string) (*int, error) {
	tag, err := ParseStrongETag(header)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(tag)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("%w: %q is not a version", ErrInvalidETag, tag)
	}
	return &v, nil
}

// VersionETag formats a version as a strong entity tag.
func VersionETag(version int) string {
	return strconv.Quote(strconv.Itoa(version))
}
