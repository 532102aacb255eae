package cache

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Profile names a data category with known change characteristics. It
// exists so call sites say what kind of data they fetch instead of
// repeating ttl/staleTime literals. Profiles carry no behavior beyond the
// duration pair they resolve to.
type Profile int

const (
	// ProfileDefault resolves to the cache-wide ttl/staleTime.
	ProfileDefault Profile = iota
	// ProfileRealtime is for data that changes continuously, such as live
	// vitals or ticker feeds.
	ProfileRealtime
	// ProfileFrequent is for data that changes many times an hour.
	ProfileFrequent
	// ProfileSemiStatic is for data that changes a few times a day.
	ProfileSemiStatic
	// ProfileStatic is for data that only changes between deployments.
	ProfileStatic
)

func (p Profile) String() string {
	switch p {
	case ProfileDefault:
		return "default"
	case ProfileRealtime:
		return "realtime"
	case ProfileFrequent:
		return "frequent"
	case ProfileSemiStatic:
		return "semi-static"
	case ProfileStatic:
		return "static"
	default:
		return "unknown"
	}
}

// ParseProfile converts a category name to a Profile. Unknown names are an
// error rather than a silent fallback, so typos in configuration surface
// at load time.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "default":
		return ProfileDefault, nil
	case "realtime":
		return ProfileRealtime, nil
	case "frequent":
		return ProfileFrequent, nil
	case "semi-static":
		return ProfileSemiStatic, nil
	case "static":
		return ProfileStatic, nil
	default:
		return ProfileDefault, errors.Newf("cache: unknown profile %q", s)
	}
}

// ProfileConfig is the duration pair a profile resolves to.
type ProfileConfig struct {
	TTL       time.Duration
	StaleTime time.Duration
}

var builtinProfiles = map[Profile]ProfileConfig{
	ProfileRealtime:   {TTL: 30 * time.Second, StaleTime: 10 * time.Second},
	ProfileFrequent:   {TTL: 2 * time.Minute, StaleTime: 30 * time.Second},
	ProfileSemiStatic: {TTL: 15 * time.Minute, StaleTime: 5 * time.Minute},
	ProfileStatic:     {TTL: 12 * time.Hour, StaleTime: time.Hour},
}

// ProfileConfig resolves the duration pair for p: per-cache overrides
// first, then the built-in table, then the cache-wide defaults. Profiles
// outside the enumeration resolve to the cache-wide defaults.
func (c *Cache) ProfileConfig(p Profile) ProfileConfig {
	if cfg, ok := c.cfg.profiles[p]; ok {
		return cfg
	}
	if cfg, ok := builtinProfiles[p]; ok {
		return cfg
	}
	return ProfileConfig{TTL: c.cfg.ttl, StaleTime: c.cfg.staleTime}
}

// FetchProfile is Fetch with ttl/staleTime resolved from a named category.
func FetchProfile[T any](ctx context.Context, c *Cache, p Profile, key string, supplier Supplier[T]) (T, error) {
	cfg := c.ProfileConfig(p)
	return Fetch(ctx, c, key, supplier, WithFetchTTL(cfg.TTL), WithFetchStaleTime(cfg.StaleTime))
}

type profileOverrideDoc struct {
	Profiles map[string]profileOverrideEntry `yaml:"profiles"`
}

type profileOverrideEntry struct {
	TTL   string `yaml:"ttl"`
	Stale string `yaml:"stale"`
}

// ParseProfileOverrides reads a YAML table of category names to duration
// pairs, for use with WithProfileOverrides:
//
//	profiles:
//	  realtime:
//	    ttl: 45s
//	    stale: 15s
//	  static:
//	    ttl: 1d
//	    stale: 2h
//
// Durations accept the extended forms of str2duration ("90s", "1h30m",
// "2d"). Unknown category names and unparsable durations are errors.
func ParseProfileOverrides(data []byte) (map[Profile]ProfileConfig, error) {
	var doc profileOverrideDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "cache: parse profile overrides")
	}
	out := make(map[Profile]ProfileConfig, len(doc.Profiles))
	for name, e := range doc.Profiles {
		p, err := ParseProfile(name)
		if err != nil {
			return nil, err
		}
		ttl, err := str2duration.ParseDuration(e.TTL)
		if err != nil {
			return nil, errors.Wrapf(err, "cache: profile %q ttl", name)
		}
		stale, err := str2duration.ParseDuration(e.Stale)
		if err != nil {
			return nil, errors.Wrapf(err, "cache: profile %q stale", name)
		}
		out[p] = ProfileConfig{TTL: ttl, StaleTime: stale}
	}
	return out, nil
}

// LoadProfileOverrides is ParseProfileOverrides on the contents of path.
func LoadProfileOverrides(path string) (map[Profile]ProfileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: read profile overrides %q", path)
	}
	return ParseProfileOverrides(data)
}
