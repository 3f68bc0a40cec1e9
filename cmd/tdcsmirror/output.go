// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/mirror"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/transfer"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

type report struct {
	Artifact  *mirror.Artifact        `json:"artifact"`
	Published *transfer.PublishResult `json:"published,omitempty"`
}

func printReport(w io.Writer, format string, r report) error {
	switch utils.TranslateFormat(format) {
	case utils.FormatJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshalling error: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case utils.FormatYAML:
		b, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("yaml marshalling error: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return printShort(w, r)
	}
}

func printEntries(w io.Writer, format string, entries []mirror.Entry) error {
	switch utils.TranslateFormat(format) {
	case utils.FormatJSON:
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshalling error: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case utils.FormatYAML:
		b, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("yaml marshalling error: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func printShort(w io.Writer, r report) error {
	if r.Artifact == nil {
		_, err := fmt.Fprintln(w, "no artifact available")
		return err
	}
	a := r.Artifact
	if a.IsDir {
		if _, err := fmt.Fprintf(w, "%s/ (%d files, %s)\n", a.Path, len(a.Files), utils.HumanBytes(a.Size)); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "%s (%s)\n", a.Path, utils.HumanBytes(a.Size)); err != nil {
		return err
	}
	if r.Published != nil {
		_, err := fmt.Fprintf(w, "published %d files to %s\n", len(r.Published.Files), r.Published.Destination)
		return err
	}
	return nil
}
