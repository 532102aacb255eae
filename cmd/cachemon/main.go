package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitalsync/go-common/cache"
	"github.com/vitalsync/go-common/logger"
)

var (
	latency   time.Duration
	overrides string
)

var rootCmd = &cobra.Command{
	Use:   "cachemon",
	Short: "Exercise the response cache against a simulated slow source",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through miss, fresh hit, stale hit with background refresh, and eviction",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.NewConsole(logger.LevelDebug)
		c := cache.New(
			cache.WithMaxEntries(3),
			cache.WithTTL(2*time.Second),
			cache.WithStaleTime(500*time.Millisecond),
			cache.WithKeyPrefix("demo"),
			cache.WithLogger(log),
		)

		version := 0
		supplier := func(ctx context.Context) (string, error) {
			version++
			time.Sleep(latency)
			return fmt.Sprintf("payload-v%d", version), nil
		}

		key := c.Key("patients/vitals", map[string]string{"id": "1"})

		timed := func(label string) {
			start := time.Now()
			v, err := cache.Fetch(ctx, c, key, supplier)
			if err != nil {
				log.Error("%s: %s", label, err)
				return
			}
			log.Info("%s: %s (%s)", label, v, time.Since(start).Round(time.Millisecond))
		}

		timed("miss, supplier runs")
		timed("fresh hit, no supplier")

		log.Info("waiting past the staleness threshold...")
		time.Sleep(600 * time.Millisecond)
		timed("stale hit, served immediately, refresh in background")

		time.Sleep(latency + 100*time.Millisecond)
		timed("fresh hit again, refreshed value")

		log.Info("filling past capacity to show eviction...")
		for i := 0; i < 4; i++ {
			c.SetDefault(c.Key("patients/meds", map[string]string{"id": fmt.Sprint(i)}), i)
		}
		for _, k := range c.Keys() {
			log.Info("  kept %s", k)
		}
		log.Info("invalidated %d vitals entries", c.InvalidatePrefix(c.EndpointPrefix("patients/vitals")))
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Print the profile table, optionally merged with a YAML override file",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []cache.Option{}
		if overrides != "" {
			merged, err := cache.LoadProfileOverrides(overrides)
			if err != nil {
				return err
			}
			opts = append(opts, cache.WithProfileOverrides(merged))
		}
		c := cache.NewProfiled(opts...)
		profiles := []cache.Profile{
			cache.ProfileDefault,
			cache.ProfileRealtime,
			cache.ProfileFrequent,
			cache.ProfileSemiStatic,
			cache.ProfileStatic,
		}
		fmt.Printf("%-12s %-10s %s\n", "PROFILE", "TTL", "STALE")
		for _, p := range profiles {
			cfg := c.ProfileConfig(p)
			fmt.Printf("%-12s %-10s %s\n", p, cfg.TTL, cfg.StaleTime)
		}
		return nil
	},
}

func main() {
	demoCmd.Flags().DurationVar(&latency, "latency", 300*time.Millisecond, "simulated source latency")
	profilesCmd.Flags().StringVar(&overrides, "overrides", "", "path to a YAML profile override file")
	rootCmd.AddCommand(demoCmd, profilesCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
