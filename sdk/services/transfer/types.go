// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/mirror"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

// -------- Publish --------

type PublishRequest struct {
	Artifact    *mirror.Artifact // takes precedence over Path
	Path        string           // local file or directory
	Destination string           // s3://bucket/prefix
	Verify      bool             // list the prefix afterwards and check every key
	Verbose     bool
}

type PublishResult struct {
	Destination string               `json:"destination" yaml:"destination"`
	Files       []utils.UploadedFile `json:"files"       yaml:"files"`
	Size        int64                `json:"size"        yaml:"size"`
}
