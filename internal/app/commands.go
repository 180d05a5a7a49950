package app

import (
	"fmt"
	"sort"
	"strings"

	backend "qbackend/internal/backend"
	logger "qbackend/internal/logger"
	utils "qbackend/internal/utils"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const descriptionColumnWidth = 60

type backendInfo struct {
	Name        string `json:"name"`
	Available   bool   `json:"available"`
	Description string `json:"description,omitempty"`
}

func newListCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List registered backends and their availability",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithLoggerE(func() error {
				registry, _, err := openRegistry(opts)
				if err != nil {
					return fail(cmd, err)
				}

				infos := make([]backendInfo, 0)
				for _, b := range registry.List() {
					infos = append(infos, backendInfo{
						Name:        b.Name(),
						Available:   b.Available(),
						Description: b.Description(),
					})
				}

				if opts.JSON {
					return emitJSON(cmd, infos)
				}
				for _, info := range infos {
					marker := " "
					if info.Available {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %-32s %s\n",
						marker, info.Name, utils.SafeTruncate(info.Description, descriptionColumnWidth))
				}
				return nil
			})
		},
	}
}

func newResolveCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "resolve <name>",
		Short:         "Resolve a backend name, alias, deprecated name or group",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithLoggerE(func() error {
				registry, cfg, err := openRegistry(opts)
				if err != nil {
					return fail(cmd, err)
				}

				requested := cfg.DefaultBackend
				if len(args) == 1 {
					requested = strings.TrimSpace(args[0])
				}

				b, err := registry.Resolve(requested)
				if err != nil {
					if backend.IsNotFound(err) {
						// Routine: the optional component simply is not
						// installed or no group candidate is up.
						logger.LogWarn(err.Error())
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", toolName, err)
						return exitError{code: 2}
					}
					return fail(cmd, err)
				}

				if opts.JSON {
					return emitJSON(cmd, backendInfo{
						Name:        b.Name(),
						Available:   b.Available(),
						Description: b.Description(),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), b.Name())
				return nil
			})
		},
	}
}

type tablesDump struct {
	Deprecated map[string]string   `json:"deprecated"`
	Aliases    map[string]string   `json:"aliases"`
	Groups     map[string][]string `json:"groups"`
}

func newTablesCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tables",
		Short:         "Dump the deprecated-name, alias and group tables",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithLoggerE(func() error {
				registry, _, err := openRegistry(opts)
				if err != nil {
					return fail(cmd, err)
				}

				dump := tablesDump{
					Deprecated: registry.Deprecated(),
					Aliases:    registry.Aliases(),
					Groups:     registry.Groups(),
				}
				if opts.JSON {
					return emitJSON(cmd, dump)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "deprecated:")
				for _, k := range sortedKeys(dump.Deprecated) {
					fmt.Fprintf(out, "  %s -> %s\n", k, dump.Deprecated[k])
				}
				fmt.Fprintln(out, "aliases:")
				for _, k := range sortedKeys(dump.Aliases) {
					fmt.Fprintf(out, "  %s -> %s\n", k, dump.Aliases[k])
				}
				fmt.Fprintln(out, "groups:")
				groupNames := make([]string, 0, len(dump.Groups))
				for k := range dump.Groups {
					groupNames = append(groupNames, k)
				}
				sort.Strings(groupNames)
				for _, k := range groupNames {
					fmt.Fprintf(out, "  %s -> %s\n", k, strings.Join(dump.Groups[k], ", "))
				}
				return nil
			})
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Remove log files left behind by dead processes",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := logger.CleanupStaleLogs()
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, deleted %d, kept %d, errors %d\n",
				stats.Scanned, stats.Deleted, stats.Kept, stats.Errors)
			if stats.Errors > 0 {
				return exitError{code: 1}
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", toolName, version)
			return nil
		},
	}
}

// runWithLoggerE adapts runWithLogger's exit-code contract to cobra's
// error contract.
func runWithLoggerE(fn func() error) error {
	var inner error
	code := runWithLogger(func() int {
		inner = fn()
		if inner != nil {
			return 1
		}
		return 0
	})
	if code != 0 && inner == nil {
		inner = exitError{code: code}
	}
	return inner
}

func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", toolName, err)
	return exitError{code: 1}
}

func emitJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
