// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// SourceKind declares what a scanned input file contains.
type SourceKind string

const (
	KindImage    SourceKind = "image"
	KindDocument SourceKind = "document"
)

// ParseKind accepts a kind name or its file extension ("png", "pdf").
func ParseKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "image", "png":
		return KindImage, nil
	case "document", "pdf":
		return KindDocument, nil
	default:
		return "", fmt.Errorf("unsupported file kind %q (use image|png or document|pdf)", s)
	}
}

// Extension returns the filename extension of the kind, without the dot.
// It returns "" for an unknown kind.
func (k SourceKind) Extension() string {
	switch k {
	case KindImage:
		return "png"
	case KindDocument:
		return "pdf"
	}
	return ""
}

// Valid reports whether k is a known kind.
func (k SourceKind) Valid() bool {
	return k.Extension() != ""
}

// SourceFile is one input file discovered by directory listing.
type SourceFile struct {
	// Name is the base filename (e.g. "007.png").
	Name string `json:"name" yaml:"name"`

	// Ordinal is the numeric stem of names like "007.png", or -1 when the
	// stem is not a number.
	Ordinal int `json:"ordinal" yaml:"ordinal"`
}
