// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/services/mirror"
	"github.com/scc-digitalhub/tdcs-mirror-sdk/sdk/utils"
)

func newDownloadCmd(a *app) *cobra.Command {
	var dest, name, to string
	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Download a single URL",
		Long: `Download a single URL into --dest. The file is named after --name, or the
server's attachment name when --name is empty. --to gives the full output path
instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			var art *mirror.Artifact
			if to != "" {
				art, err = svc.DownloadToPath(ctx, args[0], to)
			} else {
				art, err = svc.Download(ctx, mirror.DownloadRequest{SourceURL: args[0], Destination: dest, FileName: name})
			}
			if err != nil {
				return err
			}
			return a.finish(ctx, art)
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", ".", "destination directory")
	cmd.Flags().StringVarP(&name, "name", "n", "", "file name (defaults to the attachment name)")
	cmd.Flags().StringVar(&to, "to", "", "full output path, overrides --dest and --name")
	return cmd
}

func newVDCmd(a *app) *cobra.Command {
	var dest, kind, link string
	cmd := &cobra.Command{
		Use:   "vd",
		Short: "Fetch the latest VD file of a kind",
		Long: `Fetch the first VD file of --kind (info, value, value5) listed under today's
directory, or yesterday's when today is not published yet. --link infers the
kind from a data link instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			var art *mirror.Artifact
			if link != "" {
				art, err = svc.FetchVDForLink(ctx, link, dest)
			} else {
				k, perr := mirror.ParseVDKind(kind)
				if perr != nil {
					return perr
				}
				art, err = svc.FetchVD(ctx, mirror.VDRequest{Kind: k, Destination: dest})
			}
			if err != nil {
				return err
			}
			return a.finish(ctx, art)
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", ".", "destination directory")
	cmd.Flags().StringVarP(&kind, "kind", "k", "info", "info, value or value5")
	cmd.Flags().StringVar(&link, "link", "", "data link to infer the kind from")
	return cmd
}

func newVDTemplateCmd(a *app) *cobra.Command {
	var dest, at string
	cmd := &cobra.Command{
		Use:   "vd-template TEMPLATE",
		Short: "Fetch a templated VD URL, walking back in time",
		Long: `Expand $date (yyyyMMdd) and $time (HHmm) in TEMPLATE at --at, or now, and
step back until a file downloads. The daily vd_info_0000.xml.gz steps back one
day; vd_value5 files five minutes; other files one minute, within an hour.`,
		Example: `  tdcsmirror vd-template 'http://210.241.131.253/history/vd/$date/vd_value5_$time.xml.gz' --at '2024-01-15 12:37'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			anchor, err := a.instant(at)
			if err != nil {
				return err
			}
			art, err := svc.FetchVDTemplated(ctx, mirror.VDTemplateRequest{Template: args[0], Anchor: anchor, Destination: dest})
			if err != nil {
				return err
			}
			return a.finish(ctx, art)
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", ".", "destination directory")
	cmd.Flags().StringVar(&at, "at", "", "anchor time, e.g. 2024-01-15 12:37 (defaults to now)")
	return cmd
}

func newEtagCmd(a *app) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "etag",
		Short: "Mirror ETag (TDCS) category data",
	}
	cmd.PersistentFlags().StringVarP(&dest, "dest", "d", ".", "destination directory")

	day := &cobra.Command{
		Use:   "day CATEGORY DATE",
		Short: "Mirror one day, from the day archive or hour by hour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			date, err := a.instant(args[1])
			if err != nil {
				return err
			}
			art, err := svc.MirrorEtagDay(ctx, mirror.EtagDayRequest{Category: args[0], Date: date, Destination: dest})
			if err != nil {
				return err
			}
			return a.finish(ctx, art)
		},
	}

	hour := &cobra.Command{
		Use:   "hour CATEGORY DATE HOUR",
		Short: "Mirror every file of one hour directory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			date, err := a.instant(args[1])
			if err != nil {
				return err
			}
			h, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("%w: hour %q", utils.ErrInvalidRequest, args[2])
			}
			art, err := svc.MirrorEtagHour(ctx, mirror.EtagHourRequest{Category: args[0], Date: date, Hour: h, Destination: dest})
			if err != nil {
				return err
			}
			return a.finish(ctx, art)
		},
	}

	nearest := &cobra.Command{
		Use:   "nearest CATEGORY [INSTANT]",
		Short: "Fetch the newest file at or before INSTANT (defaults to now)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			var at string
			if len(args) == 2 {
				at = args[1]
			}
			instant, err := a.instant(at)
			if err != nil {
				return err
			}
			art, err := svc.FetchEtagNearest(ctx, mirror.EtagNearestRequest{Category: args[0], Instant: instant, Destination: dest})
			if err != nil {
				return err
			}
			return a.finish(ctx, art)
		},
	}

	cmd.AddCommand(day, hour, nearest)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List archive directories",
	}

	vd := &cobra.Command{
		Use:   "vd [DATE]",
		Short: "List the VD directory of DATE (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			var date string
			if len(args) == 1 {
				date = args[0]
			}
			day, err := a.instant(date)
			if err != nil {
				return err
			}
			found, err := svc.List(ctx, mirror.ListRequest{Area: mirror.AreaVD, Date: day})
			if err != nil {
				return err
			}
			return printEntries(a.out, a.opts.output, found)
		},
	}

	var allHours bool
	etag := &cobra.Command{
		Use:   "etag CATEGORY DATE [HOUR]",
		Short: "List an ETag day directory, or one hour of it",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.mirrorService(ctx)
			if err != nil {
				return err
			}
			day, err := a.instant(args[1])
			if err != nil {
				return err
			}
			if allHours {
				found, served, err := svc.ListEtagDay(ctx, args[0], day)
				if err != nil {
					return err
				}
				a.log.Infof("%d of 24 hours served", served)
				return printEntries(a.out, a.opts.output, found)
			}
			hour := -1
			if len(args) == 3 {
				if hour, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("%w: hour %q", utils.ErrInvalidRequest, args[2])
				}
			}
			found, err := svc.List(ctx, mirror.ListRequest{Area: mirror.AreaEtag, Category: args[0], Date: day, Hour: hour})
			if err != nil {
				return err
			}
			return printEntries(a.out, a.opts.output, found)
		},
	}

	etag.Flags().BoolVar(&allHours, "hours", false, "list the files of every hour of DATE")

	cmd.AddCommand(vd, etag)
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and persist settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings, secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, line := range utils.DescribeSettings(a.v) {
				if _, err := fmt.Fprintln(a.out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Write the resolved settings into the INI environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := a.v.GetString(utils.CurrentEnvironment)
			path := utils.IniPath()
			if err := utils.UpdateIniFromStruct(a.v, path, env); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.out, "saved environment %q to %s\n", env, path)
			return err
		},
	}

	use := &cobra.Command{
		Use:   "use ENV",
		Short: "Make ENV the default INI environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := utils.IniPath()
			cfg, err := utils.LoadIni(path, true)
			if err != nil {
				return err
			}
			if !cfg.HasSection(args[0]) {
				return fmt.Errorf("environment %q not found in %s", args[0], path)
			}
			cfg.Section("DEFAULT").Key(utils.CurrentEnvironment).SetValue(args[0])
			if err := utils.SaveIni(cfg, path); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "current environment: %s\n", args[0])
			return err
		},
	}

	cmd.AddCommand(show, save, use)
	return cmd
}
