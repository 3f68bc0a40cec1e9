// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsedPath is a storage destination such as s3://bucket/prefix/.
type ParsedPath struct {
	Scheme string
	Host   string
	Path   string
}

// ParsePath splits a destination URI. Only s3:// is accepted; the path keeps
// no leading slash.
func ParsePath(raw string) (*ParsedPath, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("%w: expected s3://bucket/prefix, got %q", ErrInvalidRequest, raw)
	}
	return &ParsedPath{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// Key joins the prefix and a slash-separated relative name.
func (p *ParsedPath) Key(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	switch {
	case p.Path == "":
		return rel
	case strings.HasSuffix(p.Path, "/"):
		return p.Path + rel
	default:
		return p.Path + "/" + rel
	}
}

func (p *ParsedPath) String() string {
	return fmt.Sprintf("%s://%s/%s", p.Scheme, p.Host, p.Path)
}
