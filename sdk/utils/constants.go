// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

const (
	IniName            = ".tdcsmirror.ini"
	IniPathEnv         = "TDCS_INI_PATH"
	CurrentEnvironment = "current_environment"
	UpdatedEnvKey      = "updated_environment"
	RunId              = "run_id"

	EtagRootKey          = "etag_root"
	VDRootKey            = "vd_root"
	UserAgentKey         = "user_agent"
	HeadersKey           = "headers"
	RequestTimeoutKey    = "request_timeout"
	BufferSizeKey        = "buffer_size"
	RequestsPerSecondKey = "requests_per_second"
	TimeZoneKey          = "time_zone"
	CleanupPartialKey    = "cleanup_partial"
	LogLevelKey          = "log_level"
	LogFileKey           = "log_file"
	AwsAccessKeyIDKey    = "aws_access_key_id"
	AwsSecretKey         = "aws_secret_access_key"
	AwsSessionTokenKey   = "aws_session_token"
	AwsRegionKey         = "aws_region"
	AwsEndpointURLKey    = "aws_endpoint_url"
)

// Output formats accepted by the CLI.
const (
	FormatShort = "short"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)
