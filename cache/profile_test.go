package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileString(t *testing.T) {
	assert.Equal(t, "realtime", ProfileRealtime.String())
	assert.Equal(t, "semi-static", ProfileSemiStatic.String())
	assert.Equal(t, "unknown", Profile(99).String())
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("static")
	require.NoError(t, err)
	assert.Equal(t, ProfileStatic, p)

	_, err = ParseProfile("statc")
	assert.Error(t, err, "typos must fail loudly, not fall back")
}

func TestProfileConfigBuiltin(t *testing.T) {
	c := New()
	cfg := c.ProfileConfig(ProfileRealtime)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, 10*time.Second, cfg.StaleTime)
}

func TestProfileConfigFallsBackToDefaults(t *testing.T) {
	c := New(WithTTL(time.Minute), WithStaleTime(20*time.Second))
	for _, p := range []Profile{ProfileDefault, Profile(99)} {
		cfg := c.ProfileConfig(p)
		assert.Equal(t, time.Minute, cfg.TTL)
		assert.Equal(t, 20*time.Second, cfg.StaleTime)
	}
}

func TestProfileConfigOverride(t *testing.T) {
	c := New(WithProfileOverrides(map[Profile]ProfileConfig{
		ProfileRealtime: {TTL: 45 * time.Second, StaleTime: 15 * time.Second},
	}))
	cfg := c.ProfileConfig(ProfileRealtime)
	assert.Equal(t, 45*time.Second, cfg.TTL)
	assert.Equal(t, 15*time.Second, cfg.StaleTime)
	// Profiles without an override keep their built-in values.
	assert.Equal(t, 12*time.Hour, c.ProfileConfig(ProfileStatic).TTL)
}

func TestFetchProfileUsesProfileDurations(t *testing.T) {
	now := time.Now()
	c := NewProfiled(WithClock(func() time.Time { return now }))
	v, err := FetchProfile(context.Background(), c, ProfileSemiStatic, "k",
		func(ctx context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	e, ok := Lookup[string](c, "k")
	require.True(t, ok)
	assert.Equal(t, now.Add(15*time.Minute), e.ExpiresAt)
	assert.Equal(t, now.Add(5*time.Minute), e.StaleAt)
}

func TestParseProfileOverrides(t *testing.T) {
	overrides, err := ParseProfileOverrides([]byte(`
profiles:
  realtime:
    ttl: 90s
    stale: 15s
  static:
    ttl: 2d
    stale: 12h
`))
	require.NoError(t, err)
	assert.Equal(t, ProfileConfig{TTL: 90 * time.Second, StaleTime: 15 * time.Second}, overrides[ProfileRealtime])
	assert.Equal(t, ProfileConfig{TTL: 48 * time.Hour, StaleTime: 12 * time.Hour}, overrides[ProfileStatic])
}

func TestParseProfileOverridesUnknownCategory(t *testing.T) {
	_, err := ParseProfileOverrides([]byte(`
profiles:
  turbo:
    ttl: 1m
    stale: 30s
`))
	assert.Error(t, err)
}

func TestParseProfileOverridesBadDuration(t *testing.T) {
	_, err := ParseProfileOverrides([]byte(`
profiles:
  realtime:
    ttl: soon
    stale: 30s
`))
	assert.Error(t, err)
}

func TestLoadProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  frequent:\n    ttl: 5m\n    stale: 1m\n"), 0o644))

	overrides, err := LoadProfileOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, ProfileConfig{TTL: 5 * time.Minute, StaleTime: time.Minute}, overrides[ProfileFrequent])

	_, err = LoadProfileOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
