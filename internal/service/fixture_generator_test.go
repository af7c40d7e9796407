package service

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFixtureGenerator_Generate(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	g := newFixtureGeneratorForTest(1, func() time.Time { return now }, 7*24*time.Hour)

	fixtures := g.Generate(10)
	assert.Len(t, fixtures, 10)

	for i, fx := range fixtures {
		assert.NotEmpty(t, fx.ID)
		assert.NotEqual(t, fx.HomeTeam.Name, fx.AwayTeam.Name, "fixture %d pairs a team against itself", i)
		assert.Equal(t, teamLogos[fx.HomeTeam.Name], fx.HomeTeam.Logo)
		assert.Equal(t, teamLogos[fx.AwayTeam.Name], fx.AwayTeam.Logo)
		assert.Contains(t, predictions, fx.Prediction)

		// Kick-off lands on a day inside the horizon at an afternoon hour
		assert.False(t, fx.MatchTime.Before(now.Truncate(24*time.Hour)))
		assert.True(t, fx.MatchTime.Before(now.Add(8*24*time.Hour)))
		assert.GreaterOrEqual(t, fx.MatchTime.Hour(), 12)
	}
}

func TestFixtureGenerator_FixtureCount(t *testing.T) {
	g := newFixtureGeneratorForTest(7, time.Now, time.Hour)

	for i := 0; i < 100; i++ {
		n := g.FixtureCount(5, 14)
		assert.GreaterOrEqual(t, n, 5)
		assert.LessOrEqual(t, n, 14)
	}

	// Degenerate range collapses to the minimum
	assert.Equal(t, 3, g.FixtureCount(3, 3))
	assert.Equal(t, 3, g.FixtureCount(3, 1))
}

func TestFixtureGenerator_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)

	properties.Property("no fixture pairs a team against itself", prop.ForAll(
		func(seed int64, count int) bool {
			g := newFixtureGeneratorForTest(seed, func() time.Time { return now }, 7*24*time.Hour)
			for _, fx := range g.Generate(count) {
				if fx.HomeTeam.Name == fx.AwayTeam.Name {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 30),
	))

	properties.Property("every kick-off hour is afternoon or later", prop.ForAll(
		func(seed int64, count int) bool {
			g := newFixtureGeneratorForTest(seed, func() time.Time { return now }, 7*24*time.Hour)
			for _, fx := range g.Generate(count) {
				if fx.MatchTime.Hour() < 12 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 30),
	))

	properties.Property("fixture count always stays inside the range", prop.ForAll(
		func(seed int64, min, spread int) bool {
			g := newFixtureGeneratorForTest(seed, time.Now, time.Hour)
			n := g.FixtureCount(min, min+spread)
			return n >= min && n <= min+spread
		},
		gen.Int64(),
		gen.IntRange(1, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
