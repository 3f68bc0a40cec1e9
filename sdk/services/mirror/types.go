// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// VDKind selects one of the three vehicle-detector artifact families.
type VDKind int

const (
	VDInfo VDKind = iota
	VDValue1Min
	VDValue5Min
)

// Prefix is the file name prefix the archive uses for the kind.
func (k VDKind) Prefix() string {
	switch k {
	case VDValue1Min:
		return "vd_value_"
	case VDValue5Min:
		return "vd_value5_"
	default:
		return "vd_info_"
	}
}

func (k VDKind) String() string {
	switch k {
	case VDValue1Min:
		return "value"
	case VDValue5Min:
		return "value5"
	default:
		return "info"
	}
}

// ParseVDKind accepts info, value (or 1) and value5 (or 5).
func ParseVDKind(s string) (VDKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "0", "":
		return VDInfo, nil
	case "value", "value1", "1":
		return VDValue1Min, nil
	case "value5", "5":
		return VDValue5Min, nil
	default:
		return VDInfo, fmt.Errorf("%w: unknown vd kind %q", utils.ErrInvalidRequest, s)
	}
}

// VDKindFromLink infers the kind from a data link; anything that is not a
// value or value5 link is treated as info.
func VDKindFromLink(link string) VDKind {
	switch {
	case strings.Contains(link, VDValue1Min.Prefix()):
		return VDValue1Min
	case strings.Contains(link, VDValue5Min.Prefix()):
		return VDValue5Min
	default:
		return VDInfo
	}
}

// DownloadRequest streams SourceURL into Destination. An empty FileName
// means the server-supplied attachment name.
type DownloadRequest struct {
	SourceURL   string
	Destination string
	FileName    string
}

// VDRequest fetches the first artifact of Kind from today's VD listing,
// or yesterday's when today is not published yet.
type VDRequest struct {
	Kind        VDKind
	Destination string
}

// VDTemplateRequest fetches a templated VD URL ($date, optional $time),
// walking back from Anchor when the artifact is missing.
type VDTemplateRequest struct {
	Template    string
	Anchor      time.Time
	Destination string
}

// EtagDayRequest mirrors a whole day of one ETag category.
type EtagDayRequest struct {
	Category    string
	Date        time.Time
	Destination string
}

// EtagHourRequest mirrors every file of one hour directory.
type EtagHourRequest struct {
	Category    string
	Date        time.Time
	Hour        int
	Destination string
}

// EtagNearestRequest fetches the newest single file at or before Instant.
type EtagNearestRequest struct {
	Category    string
	Instant     time.Time
	Destination string
}

// Artifact is what a successful operation left on disk.
type Artifact struct {
	Path      string   `json:"path"`
	IsDir     bool     `json:"is_dir"`
	SourceURL string   `json:"source_url,omitempty"`
	Size      int64    `json:"size"`
	Files     []string `json:"files,omitempty"`
}
