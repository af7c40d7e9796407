package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tipbase-server/internal/models"
)

// teamLogos maps the fixed demo team names to public crest images
var teamLogos = map[string]string{
	"Man Utd":           "https://upload.wikimedia.org/wikipedia/en/7/7a/Manchester_United_FC_crest.svg",
	"Man City":          "https://upload.wikimedia.org/wikipedia/en/e/eb/Manchester_City_FC_badge.svg",
	"Chelsea":           "https://upload.wikimedia.org/wikipedia/en/c/cc/Chelsea_FC.svg",
	"Arsenal":           "https://upload.wikimedia.org/wikipedia/en/5/53/Arsenal_FC.svg",
	"Liverpool":         "https://upload.wikimedia.org/wikipedia/en/0/0c/Liverpool_FC.svg",
	"Tottenham":         "https://upload.wikimedia.org/wikipedia/en/b/b4/Tottenham_Hotspur.svg",
	"Barcelona":         "https://upload.wikimedia.org/wikipedia/en/4/47/FC_Barcelona_%28crest%29.svg",
	"Real Madrid":       "https://upload.wikimedia.org/wikipedia/en/5/56/Real_Madrid_CF.svg",
	"PSG":               "https://upload.wikimedia.org/wikipedia/en/a/a7/Paris_Saint-Germain_F.C..svg",
	"Bayern Munich":     "https://upload.wikimedia.org/wikipedia/commons/1/1b/FC_Bayern_M%C3%BCnchen_logo_%282017%29.svg",
	"Juventus":          "https://upload.wikimedia.org/wikipedia/commons/1/15/Juventus_FC_2017_logo.svg",
	"AC Milan":          "https://upload.wikimedia.org/wikipedia/commons/d/d0/Logo_of_AC_Milan.svg",
	"Inter Milan":       "https://upload.wikimedia.org/wikipedia/commons/0/05/FC_Internazionale_Milano_2014.svg",
	"Atletico Madrid":   "https://upload.wikimedia.org/wikipedia/en/f/f4/Atletico_Madrid_2017_logo.svg",
	"Borussia Dortmund": "https://upload.wikimedia.org/wikipedia/commons/6/67/Borussia_Dortmund_logo.svg",
}

// teamNames keeps a stable draw order for the generator
var teamNames = []string{
	"Man Utd", "Man City", "Chelsea", "Arsenal", "Liverpool", "Tottenham",
	"Barcelona", "Real Madrid", "PSG", "Bayern Munich", "Juventus",
	"AC Milan", "Inter Milan", "Atletico Madrid", "Borussia Dortmund",
}

// predictions are the outcome labels a fixture can carry
var predictions = []string{"Home Win", "Away Win", "Draw"}

// FixtureGenerator synthesizes demo fixtures. It is not safe for
// concurrent use; TipsService serializes access under its own mutex.
type FixtureGenerator struct {
	rng     *rand.Rand
	now     func() time.Time
	horizon time.Duration
}

// NewFixtureGenerator creates a generator seeded from the clock
func NewFixtureGenerator(horizon time.Duration) *FixtureGenerator {
	return &FixtureGenerator{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
		horizon: horizon,
	}
}

// newFixtureGeneratorForTest pins the rng and clock for deterministic tests
func newFixtureGeneratorForTest(seed int64, now func() time.Time, horizon time.Duration) *FixtureGenerator {
	return &FixtureGenerator{
		rng:     rand.New(rand.NewSource(seed)),
		now:     now,
		horizon: horizon,
	}
}

// Generate produces count fixtures with distinct home/away teams, kick-off
// times inside the horizon with afternoon-or-later hours, and a random
// outcome label each.
func (g *FixtureGenerator) Generate(count int) []models.Fixture {
	fixtures := make([]models.Fixture, 0, count)
	now := g.now()

	for i := 0; i < count; i++ {
		matchTime := now.Add(time.Duration(g.rng.Float64() * float64(g.horizon)))
		matchTime = time.Date(
			matchTime.Year(), matchTime.Month(), matchTime.Day(),
			g.rng.Intn(12)+12, g.rng.Intn(60), 0, 0, matchTime.Location(),
		)

		home := teamNames[g.rng.Intn(len(teamNames))]
		away := teamNames[g.rng.Intn(len(teamNames))]
		// Redraw until the sides differ
		for away == home {
			away = teamNames[g.rng.Intn(len(teamNames))]
		}

		fixtures = append(fixtures, models.Fixture{
			ID:         fmt.Sprintf("fixture-%d-%d", now.UnixMilli(), i),
			HomeTeam:   models.Team{Name: home, Logo: teamLogos[home]},
			AwayTeam:   models.Team{Name: away, Logo: teamLogos[away]},
			MatchTime:  matchTime,
			Prediction: predictions[g.rng.Intn(len(predictions))],
		})
	}

	return fixtures
}

// FixtureCount draws a fixture count in [min, max]
func (g *FixtureGenerator) FixtureCount(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}
