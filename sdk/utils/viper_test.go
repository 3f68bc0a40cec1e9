// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func TestLoadSDKConfigDefaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, RegisterIniCfgWithViper(v, filepath.Join(t.TempDir(), "missing.ini")))

	c, err := LoadSDKConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://210.241.131.253/history/TDCS", c.Archive.EtagRoot)
	assert.Equal(t, "http://210.241.131.253/history/vd", c.Archive.VDRoot)
	assert.Equal(t, 8192, c.Archive.BufferSize)
	assert.Equal(t, 60*time.Second, c.Archive.RequestTimeout)
	assert.Equal(t, "Asia/Taipei", c.Archive.TimeZone)
	assert.Equal(t, "default", v.GetString(CurrentEnvironment))
}

func TestEnvOverridesIni(t *testing.T) {
	iniPath := filepath.Join(t.TempDir(), IniName)
	cfg := ini.Empty()
	cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue("mirror")
	cfg.Section("mirror").Key(BufferSizeKey).SetValue("4096")
	cfg.Section("mirror").Key(EtagRootKey).SetValue("http://mirror.local/TDCS")
	cfg.Section("mirror").Key(HeadersKey).SetValue("X-A=1")
	require.NoError(t, cfg.SaveTo(iniPath))

	t.Setenv("TDCS_BUFFER_SIZE", "1024")

	v := viper.New()
	require.NoError(t, RegisterIniCfgWithViper(v, iniPath))
	assert.Equal(t, "mirror", v.GetString(CurrentEnvironment))

	c, err := LoadSDKConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 1024, c.Archive.BufferSize)
	assert.Equal(t, "http://mirror.local/TDCS", c.Archive.EtagRoot)
	assert.Equal(t, map[string]string{"X-A": "1"}, c.Archive.Headers)
}

func TestRegisterUnknownEnvironment(t *testing.T) {
	iniPath := filepath.Join(t.TempDir(), IniName)
	require.NoError(t, ini.Empty().SaveTo(iniPath))
	assert.Error(t, RegisterIniCfgWithViper(viper.New(), iniPath, "staging"))
}

func TestWriteAndUpdateIni(t *testing.T) {
	iniPath := filepath.Join(t.TempDir(), IniName)
	t.Setenv("AWS_SECRET_ACCESS_KEY", "s3cr3t")

	v := viper.New()
	require.NoError(t, RegisterIniCfgWithViper(v, iniPath, "prod"))
	v.Set(TimeZoneKey, "UTC")
	require.NoError(t, UpdateIniFromStruct(v, iniPath, "prod"))

	cfg, err := ini.Load(iniPath)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Section("DEFAULT").Key(CurrentEnvironment).String())
	assert.Equal(t, "UTC", cfg.Section("prod").Key(TimeZoneKey).String())
	assert.Equal(t, "s3cr3t", cfg.Section("prod").Key(AwsSecretKey).String())
	assert.False(t, cfg.Section("prod").HasKey(CurrentEnvironment))

	v.Set(LogLevelKey, "debug")
	require.NoError(t, UpdateIniFromStruct(v, iniPath, "prod"))
	cfg, err = ini.Load(iniPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Section("prod").Key(LogLevelKey).String())
	assert.NotEmpty(t, cfg.Section("prod").Key(UpdatedEnvKey).String())

	lines := DescribeSettings(v)
	assert.Contains(t, lines, "aws_secret_access_key=****")
	assert.Contains(t, lines, "time_zone=UTC")
}

func TestLoadSDKConfigRejectsInvalid(t *testing.T) {
	v := viper.New()
	BindEnvFromStruct(v)
	v.Set(TimeZoneKey, "Nowhere/Special")
	_, err := LoadSDKConfig(v)
	assert.Error(t, err)
}
