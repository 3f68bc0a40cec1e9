// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
)

// Settings holds all logical keys. Tags:
// - vkey: Viper key
// - env: env variable name. If empty, TDCS_ + upper(vkey)
// - persist: "true" to write the key into the INI
// - default: default applied when the key is unset
// - secret: "true" if sensitive, masked when printed
// - bind: "false" to NOT bind from env
type Settings struct {
	EtagRoot          string `vkey:"etag_root"           env:"TDCS_ETAG_ROOT"           persist:"true" default:"http://210.241.131.253/history/TDCS"`
	VDRoot            string `vkey:"vd_root"             env:"TDCS_VD_ROOT"             persist:"true" default:"http://210.241.131.253/history/vd"`
	UserAgent         string `vkey:"user_agent"          env:"TDCS_USER_AGENT"          persist:"true" default:"tdcs-mirror-sdk"`
	Headers           string `vkey:"headers"             env:"TDCS_HEADERS"             persist:"true"`
	RequestTimeout    string `vkey:"request_timeout"     env:"TDCS_REQUEST_TIMEOUT"     persist:"true" default:"60s"`
	BufferSize        string `vkey:"buffer_size"         env:"TDCS_BUFFER_SIZE"         persist:"true" default:"8192"`
	RequestsPerSecond string `vkey:"requests_per_second" env:"TDCS_REQUESTS_PER_SECOND" persist:"true" default:"0"`
	TimeZone          string `vkey:"time_zone"           env:"TDCS_TIME_ZONE"           persist:"true" default:"Asia/Taipei"`
	CleanupPartial    string `vkey:"cleanup_partial"     env:"TDCS_CLEANUP_PARTIAL"     persist:"true" default:"false"`
	LogLevel          string `vkey:"log_level"           env:"TDCS_LOG_LEVEL"           persist:"true" default:"info"`
	LogFile           string `vkey:"log_file"            env:"TDCS_LOG_FILE"            persist:"true"`

	// S3 publishing
	AwsAccessKeyID     string `vkey:"aws_access_key_id"     env:"AWS_ACCESS_KEY_ID"     persist:"true" secret:"true"`
	AwsSecretAccessKey string `vkey:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY" persist:"true" secret:"true"`
	AwsSessionToken    string `vkey:"aws_session_token"     env:"AWS_SESSION_TOKEN"     persist:"true" secret:"true"`
	AwsRegion          string `vkey:"aws_region"            env:"AWS_REGION"            persist:"true" default:"us-east-1"`
	AwsEndpointURL     string `vkey:"aws_endpoint_url"      env:"AWS_ENDPOINT_URL"      persist:"true"`

	UpdatedEnvironment string `vkey:"updated_environment" persist:"true" bind:"false"`
	CurrentEnvironment string `vkey:"current_environment" persist:"false" bind:"false"`
}

type settingField struct {
	key     string
	env     string
	def     string
	persist bool
	bind    bool
	secret  bool
}

func settingFields() []settingField {
	rt := reflect.TypeOf(Settings{})
	fields := make([]settingField, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		key := f.Tag.Get("vkey")
		if key == "" {
			continue
		}
		env := f.Tag.Get("env")
		if env == "" {
			env = "TDCS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
		fields = append(fields, settingField{
			key:     key,
			env:     env,
			def:     f.Tag.Get("default"),
			persist: f.Tag.Get("persist") == "true",
			bind:    !strings.EqualFold(f.Tag.Get("bind"), "false"),
			secret:  f.Tag.Get("secret") == "true",
		})
	}
	return fields
}

// resolveEnvName: --env > "default"
func resolveEnvName(optionalEnv ...string) string {
	if len(optionalEnv) > 0 && optionalEnv[0] != "" && strings.ToLower(optionalEnv[0]) != "null" {
		return optionalEnv[0]
	}
	return "default"
}

// BindEnvFromStruct binds every Settings field to its env variable and sets
// tag defaults.
func BindEnvFromStruct(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, f := range settingFields() {
		if f.bind {
			_ = v.BindEnv(f.key, f.env)
		}
		if f.def != "" {
			v.SetDefault(f.key, f.def)
		}
	}
}

// WriteIniFromStruct writes a new INI holding only persisted, non-empty keys.
func WriteIniFromStruct(v *viper.Viper, iniPath, envName string) error {
	cfg := ini.Empty()
	cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	fillSection(v, cfg.Section(envName))
	return SaveIni(cfg, iniPath)
}

// UpdateIniFromStruct updates or creates the envName section from the
// current Viper values.
func UpdateIniFromStruct(v *viper.Viper, iniPath, envName string) error {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return WriteIniFromStruct(v, iniPath, envName)
	}
	sec := cfg.Section(envName)
	fillSection(v, sec)

	if !cfg.Section("DEFAULT").HasKey(CurrentEnvironment) {
		cfg.Section("DEFAULT").Key(CurrentEnvironment).SetValue(envName)
	}
	sec.Key(UpdatedEnvKey).SetValue(time.Now().UTC().Format(time.RFC3339))
	return SaveIni(cfg, iniPath)
}

func fillSection(v *viper.Viper, sec *ini.Section) {
	for _, f := range settingFields() {
		if !f.persist {
			continue
		}
		if val := v.GetString(f.key); val != "" {
			sec.Key(f.key).SetValue(val)
		}
	}
}

// loadIniSectionIntoViper merges [DEFAULT] and [env] into v as a config
// layer, so env variables still win on Get. It returns the section used.
func loadIniSectionIntoViper(v *viper.Viper, cfg *ini.File, env string) (string, error) {
	def := cfg.Section("DEFAULT")
	selected, used := def, "DEFAULT"
	if env != "" && cfg.HasSection(env) {
		selected, used = cfg.Section(env), env
	}

	merged := make(map[string]string)
	for _, k := range def.Keys() {
		merged[k.Name()] = k.Value()
	}
	if selected != def {
		for _, k := range selected.Keys() {
			merged[k.Name()] = k.Value()
		}
	}

	var buf bytes.Buffer
	for k, val := range merged {
		vSafe := strings.ReplaceAll(strings.ReplaceAll(val, `\`, `\\`), `"`, `\"`)
		_, _ = fmt.Fprintf(&buf, "%s = \"%s\"\n", k, vSafe)
	}
	v.SetConfigType("toml")
	return used, v.ReadConfig(&buf)
}

// RegisterIniCfgWithViper binds the environment, then layers the active INI
// section (--env > DEFAULT.current_environment > default) when the file exists.
func RegisterIniCfgWithViper(v *viper.Viper, iniPath string, optionalEnv ...string) error {
	BindEnvFromStruct(v)

	env := resolveEnvName(optionalEnv...)
	cfg, err := ini.Load(iniPath)
	if err != nil {
		// env-only mode
		v.Set(CurrentEnvironment, env)
		return nil
	}

	if env == "default" {
		if cur := cfg.Section("DEFAULT").Key(CurrentEnvironment).String(); cur != "" {
			env = cur
		}
	}
	used, err := loadIniSectionIntoViper(v, cfg, env)
	if err != nil {
		return fmt.Errorf("failed to load INI into viper: %w", err)
	}
	if used == "DEFAULT" && env != "default" && !strings.EqualFold(env, "DEFAULT") {
		return fmt.Errorf("environment %q not found in %s", env, iniPath)
	}
	v.Set(CurrentEnvironment, env)
	return nil
}

// LoadSDKConfig builds the SDK config from the resolved settings.
func LoadSDKConfig(v *viper.Viper) (config.Config, error) {
	c := config.Config{
		Archive: config.ArchiveConfig{
			EtagRoot:          v.GetString(EtagRootKey),
			VDRoot:            v.GetString(VDRootKey),
			UserAgent:         v.GetString(UserAgentKey),
			Headers:           ParseHeaders(v.GetString(HeadersKey)),
			RequestTimeout:    v.GetDuration(RequestTimeoutKey),
			BufferSize:        v.GetInt(BufferSizeKey),
			RequestsPerSecond: v.GetFloat64(RequestsPerSecondKey),
			TimeZone:          v.GetString(TimeZoneKey),
			CleanupPartial:    v.GetBool(CleanupPartialKey),
		},
		S3: config.S3Config{
			AccessKey:   v.GetString(AwsAccessKeyIDKey),
			SecretKey:   v.GetString(AwsSecretKey),
			AccessToken: v.GetString(AwsSessionTokenKey),
			Region:      v.GetString(AwsRegionKey),
			EndpointURL: v.GetString(AwsEndpointURLKey),
		},
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

// DescribeSettings returns key=value lines for the resolved settings, with
// secrets masked.
func DescribeSettings(v *viper.Viper) []string {
	var lines []string
	for _, f := range settingFields() {
		val := v.GetString(f.key)
		if val == "" {
			continue
		}
		if f.secret {
			val = "****"
		}
		lines = append(lines, f.key+"="+val)
	}
	sort.Strings(lines)
	return lines
}
