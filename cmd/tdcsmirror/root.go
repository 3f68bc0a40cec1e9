// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/config"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/logging"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/metrics"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/mirror"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/transfer"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

type options struct {
	env         string
	envFile     string
	logLevel    string
	output      string
	publish     string
	verify      bool
	progress    bool
	metricsFile string
	bufferSize  int
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	opts options
	v    *viper.Viper
	log  logging.Interface
	hook *config.ProgressHook
	loc  *time.Location
	out  io.Writer
	err  io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, err: errOut}

	root := &cobra.Command{
		Use:   "tdcsmirror",
		Short: "Mirror artifacts from the TDCS traffic data archive",
		Long: `tdcsmirror downloads vehicle-detector (VD) files and ETag (TDCS) traffic
archives from the public freeway data archive, walking back in time when the
requested artifact is not published yet.

Settings come from the environment (TDCS_*, AWS_*), an optional .env file and
the INI profile at $TDCS_INI_PATH or ~/.tdcsmirror.ini.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.env, "env", "", "INI environment (defaults to current_environment)")
	f.StringVar(&a.opts.envFile, "env-file", ".env", "dotenv file loaded before reading settings")
	f.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVarP(&a.opts.output, "output", "o", utils.FormatShort, "output format: short, json, yaml")
	f.StringVar(&a.opts.publish, "publish", "", "upload the artifact to s3://bucket/prefix")
	f.BoolVar(&a.opts.verify, "verify", false, "list the publish prefix afterwards and check every object")
	f.BoolVar(&a.opts.progress, "progress", false, "show progress bars on stderr")
	f.StringVar(&a.opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	f.IntVar(&a.opts.bufferSize, "buffer-size", 0, "streaming buffer size in bytes (0 keeps the configured size)")

	root.SetOut(out)
	root.SetErr(errOut)
	root.AddCommand(
		newDownloadCmd(a),
		newVDCmd(a),
		newVDTemplateCmd(a),
		newEtagCmd(a),
		newListCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", a.opts.envFile, err)
	}

	a.v = viper.New()
	if err := utils.RegisterIniCfgWithViper(a.v, utils.IniPath(), a.opts.env); err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		a.v.Set(utils.LogLevelKey, a.opts.logLevel)
	}

	lc, err := logging.NewConfig(
		logging.WithLevel(a.v.GetString(utils.LogLevelKey)),
		logging.WithFile(a.v.GetString(utils.LogFileKey)),
	)
	if err != nil {
		return err
	}
	if a.log, err = logging.New(lc); err != nil {
		return err
	}

	if a.opts.metricsFile != "" {
		metrics.Register()
	}
	if a.opts.progress {
		a.hook = newProgressHook(a.err)
	}
	return nil
}

func (a *app) teardown() error {
	if a.opts.metricsFile == "" {
		return nil
	}
	return metrics.WriteTextfile(a.opts.metricsFile)
}

// mirrorService builds the SDK service from the resolved settings.
func (a *app) mirrorService(ctx context.Context) (*mirror.MirrorService, error) {
	conf, err := utils.LoadSDKConfig(a.v)
	if err != nil {
		return nil, err
	}
	if a.loc, err = conf.Archive.Location(); err != nil {
		return nil, err
	}
	svc, err := mirror.NewMirrorService(ctx, conf,
		mirror.WithLogger(a.log),
		mirror.WithProgressHook(a.hook),
	)
	if err != nil {
		return nil, err
	}
	if a.opts.bufferSize > 0 {
		svc.SetBufferSize(a.opts.bufferSize)
	}
	return svc, nil
}

// finish publishes the artifact when asked and prints the report.
func (a *app) finish(ctx context.Context, art *mirror.Artifact) error {
	r := report{Artifact: art}
	if art != nil && a.opts.publish != "" {
		published, err := a.publish(ctx, art)
		if err != nil {
			return err
		}
		r.Published = published
	}
	return printReport(a.out, a.opts.output, r)
}

func (a *app) publish(ctx context.Context, art *mirror.Artifact) (*transfer.PublishResult, error) {
	conf, err := utils.LoadSDKConfig(a.v)
	if err != nil {
		return nil, err
	}
	svc, err := transfer.NewTransferService(ctx, conf,
		transfer.WithLogger(a.log),
		transfer.WithProgressHook(a.hook),
	)
	if err != nil {
		return nil, err
	}
	return svc.Publish(ctx, transfer.PublishRequest{
		Artifact:    art,
		Destination: a.opts.publish,
		Verify:      a.opts.verify,
		Verbose:     a.opts.progress,
	})
}

// instant parses a user supplied time in the archive time zone; empty means
// the zero time so the service falls back to its clock.
func (a *app) instant(s string) (time.Time, error) {
	if !utils.IsValid(s) {
		return time.Time{}, nil
	}
	return utils.ParseInstant(s, a.loc)
}
