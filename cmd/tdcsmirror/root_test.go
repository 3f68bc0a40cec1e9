// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/mirror"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/transfer"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

type archiveStub struct {
	mu     sync.Mutex
	agents []string
	pages  map[string]string
}

func (s *archiveStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.agents = append(s.agents, r.Header.Get("User-Agent"))
	s.mu.Unlock()
	body, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

// newCLIEnv points settings at a stub archive and a throwaway INI file.
func newCLIEnv(t *testing.T, pages map[string]string) (*archiveStub, *httptest.Server) {
	t.Helper()
	stub := &archiveStub{pages: pages}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	t.Setenv(utils.IniPathEnv, filepath.Join(t.TempDir(), "tdcsmirror.ini"))
	t.Setenv("TDCS_VD_ROOT", srv.URL+"/history/vd")
	t.Setenv("TDCS_ETAG_ROOT", srv.URL+"/history/TDCS")
	return stub, srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--log-level", "error", "--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDownloadCommand(t *testing.T) {
	stub, srv := newCLIEnv(t, map[string]string{"/files/a.csv": "01F0005N,31"})
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TDCS_USER_AGENT=cli-test/1.0\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TDCS_USER_AGENT") })
	metricsFile := filepath.Join(dir, "metrics.prom")

	out, err := run(t, "--env-file", envFile, "--metrics-file", metricsFile, "-o", "json",
		"download", srv.URL+"/files/a.csv", "--dest", dir, "--name", "a.csv")
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.NotNil(t, r.Artifact)
	assert.Equal(t, filepath.Join(dir, "a.csv"), r.Artifact.Path)
	data, err := os.ReadFile(r.Artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "01F0005N,31", string(data))
	assert.Equal(t, []string{"cli-test/1.0"}, stub.agents)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "tdcs_mirror_http_requests_total")
}

func TestVDTemplateCommandReportsAbsence(t *testing.T) {
	_, srv := newCLIEnv(t, nil)

	out, err := run(t, "vd-template", srv.URL+"/history/vd/$date/vd_info_0000.xml.gz",
		"--at", "2024-01-15 08:00", "--dest", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "no artifact available\n", out)
}

func TestEtagHourCommand(t *testing.T) {
	_, _ = newCLIEnv(t, map[string]string{
		"/history/TDCS/M04A/20170406/11/": `<table id="indexlist"><tr class="even"><td class="indexcolname"><a href="../">Parent Directory</a></td></tr>` +
			`<tr class="odd"><td class="indexcolname"><a href="TDCS_M04A_20170406_110000.csv">x</a></td></tr></table>`,
		"/history/TDCS/M04A/20170406/11/TDCS_M04A_20170406_110000.csv": "m04a",
	})
	dest := t.TempDir()

	out, err := run(t, "-o", "yaml", "etag", "hour", "M04A", "2017-04-06", "11", "--dest", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "is_dir: true")
	assert.Contains(t, out, "TDCS_M04A_20170406_110000.csv")

	_, err = run(t, "etag", "hour", "M04A", "2017-04-06", "eleven", "--dest", dest)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}

func TestConfigSaveAndShow(t *testing.T) {
	_, srv := newCLIEnv(t, nil)
	t.Setenv("AWS_SECRET_ACCESS_KEY", "very-secret")

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "aws_secret_access_key=****")
	assert.NotContains(t, out, "very-secret")
	assert.Contains(t, out, "vd_root="+srv.URL+"/history/vd")

	_, err = run(t, "config", "save")
	require.NoError(t, err)
	ini, err := os.ReadFile(utils.IniPath())
	require.NoError(t, err)
	assert.Contains(t, string(ini), "[default]")
	assert.Contains(t, string(ini), srv.URL+"/history/vd")

	_, err = run(t, "config", "use", "staging")
	assert.Error(t, err)
	_, err = run(t, "config", "use", "default")
	assert.NoError(t, err)
}

func TestPrintShort(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, printReport(&b, "short", report{
		Artifact:  &mirror.Artifact{Path: "/out/M03A_20170706", IsDir: true, Files: []string{"a", "b"}, Size: 2048},
		Published: &transfer.PublishResult{Destination: "s3://traffic/etag/", Files: make([]utils.UploadedFile, 2)},
	}))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "/out/M03A_20170706/ (2 files"))
	assert.Equal(t, "published 2 files to s3://traffic/etag/", lines[1])
}

func TestListCommand(t *testing.T) {
	_, _ = newCLIEnv(t, map[string]string{
		"/history/TDCS/M03A/20170706/": `<table id="indexlist"><tr class="even"><td class="indexcolname"><a href="../">Parent Directory</a></td></tr>` +
			`<tr class="odd"><td class="indexcolname"><a href="00/">00/</a></td></tr>` +
			`<tr class="even"><td class="indexcolname"><a href="01/">01/</a></td></tr></table>`,
	})

	out, err := run(t, "ls", "etag", "M03A", "20170706")
	require.NoError(t, err)
	assert.Equal(t, "00/\n01/\n", out)

	_, err = run(t, "ls", "etag", "M03A", "20170706", "05")
	assert.ErrorIs(t, err, utils.ErrRemoteUnavailable)
}
