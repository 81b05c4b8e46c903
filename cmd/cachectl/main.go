// cachectl inspects and prunes the on-disk cache directories written by the
// cache package. It operates purely on the documented filesystem layout
// (<root>/<namespace>/<key>.cache) and never touches entry content.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/oscarb/barkcache/cache"
	"github.com/oscarb/barkcache/logger"
)

var (
	rootDir string
	log     logger.Logger
)

func store() *cache.Store {
	return cache.NewStore(rootDir)
}

var rootCmd = &cobra.Command{
	Use:   "cachectl",
	Short: "Inspect and prune on-disk memoization caches",
}

var lsCmd = &cobra.Command{
	Use:   "ls [namespace]",
	Short: "List namespaces, or the entries of one namespace",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := store()
		ctx := cmd.Context()
		if len(args) == 0 {
			namespaces, err := s.Namespaces(ctx)
			if err != nil {
				return err
			}
			for _, ns := range namespaces {
				entries, err := s.Entries(ctx, ns)
				if err != nil {
					return err
				}
				var total int64
				for _, e := range entries {
					total += e.Size
				}
				fmt.Printf("%-32s %4d entries  %s\n", ns, len(entries), humanize.Bytes(uint64(total)))
			}
			return nil
		}
		entries, err := s.Entries(ctx, args[0])
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %8s  %s\n", e.Key, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime))
		}
		return nil
	},
}

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show totals for the cache root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := store()
		ctx := cmd.Context()
		namespaces, err := s.Namespaces(ctx)
		if err != nil {
			return err
		}
		var count int
		var total int64
		for _, ns := range namespaces {
			entries, err := s.Entries(ctx, ns)
			if err != nil {
				return err
			}
			count += len(entries)
			for _, e := range entries {
				total += e.Size
			}
		}
		fmt.Printf("root:       %s\n", s.Root())
		fmt.Printf("namespaces: %d\n", len(namespaces))
		fmt.Printf("entries:    %d\n", count)
		fmt.Printf("size:       %s\n", humanize.Bytes(uint64(total)))
		return nil
	},
}

var olderThan string

var purgeCmd = &cobra.Command{
	Use:   "purge <namespace>",
	Short: "Remove entries from a namespace, optionally only those older than a duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var age time.Duration
		if olderThan != "" {
			parsed, err := str2duration.ParseDuration(olderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value %q: %w", olderThan, err)
			}
			age = parsed
		}
		removed, err := store().Purge(cmd.Context(), args[0], age)
		if err != nil {
			return err
		}
		log.Info("removed %d entries from %s", removed, args[0])
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <namespace> [key]",
	Short: "Remove one entry, or a whole namespace",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := store()
		ctx := cmd.Context()
		if len(args) == 2 {
			found, err := s.Remove(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no entry %s/%s", args[0], args[1])
			}
			return nil
		}
		found, err := s.RemoveNamespace(ctx, args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no namespace %s", args[0])
		}
		return nil
	},
}

func main() {
	log = logger.NewConsole(logger.GetLevelFromEnv())
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", cache.DefaultRoot, "cache root directory")
	purgeCmd.Flags().StringVar(&olderThan, "older-than", "", "only remove entries older than this duration (e.g. 90m, 12h, 7d)")
	rootCmd.AddCommand(lsCmd, statCmd, purgeCmd, rmCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
