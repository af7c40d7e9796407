package models

import (
	"time"

	"github.com/tipbase-server/internal/types"
)

// Team represents one side of a fixture
type Team struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// TipsterComment represents an appended tipster insight on a fixture.
// Comments are never edited or removed once attached.
type TipsterComment struct {
	TipsterID     string  `json:"tipsterId"`
	TipsterName   string  `json:"tipsterName"`
	TipsterRating float64 `json:"tipsterRating"`
	TipsterAvatar string  `json:"tipsterAvatar,omitempty"`
	Comment       string  `json:"comment"`
}

// Fixture represents a single match inside a generated tip
type Fixture struct {
	ID         string           `json:"id"`
	HomeTeam   Team             `json:"homeTeam"`
	AwayTeam   Team             `json:"awayTeam"`
	MatchTime  time.Time        `json:"matchTime"`
	Prediction string           `json:"prediction,omitempty"`
	Comments   []TipsterComment `json:"comments,omitempty"`
}

// SideFilters holds the form-side criteria for one team
type SideFilters struct {
	Result      string `json:"result,omitempty"`
	ResultCount int    `json:"resultCount,omitempty"`
	Goals       string `json:"goals,omitempty"`
	Position    string `json:"position,omitempty"`
	Bookings    string `json:"bookings,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// H2HFilters holds head-to-head criteria for one side
type H2HFilters struct {
	Result string `json:"result,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// TipFilters is the snapshot of criteria a tip was generated from
type TipFilters struct {
	General string       `json:"general,omitempty"`
	Home    *SideFilters `json:"home,omitempty"`
	Away    *SideFilters `json:"away,omitempty"`
	HomeH2H *H2HFilters  `json:"homeH2H,omitempty"`
	AwayH2H *H2HFilters  `json:"awayH2H,omitempty"`
	League  string       `json:"league,omitempty"`
}

// Tipster identifies a tipster for assignment and reviews
type Tipster struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Avatar string  `json:"avatar,omitempty"`
}

// GeneratedTip represents one generation run and its fixtures. Once
// generated, fixtures are immutable apart from their comment lists.
type GeneratedTip struct {
	ID                    string          `json:"id"`
	Timestamp             int64           `json:"timestamp"` // epoch millis
	Filters               TipFilters      `json:"filters"`
	Fixtures              []Fixture       `json:"fixtures"`
	Status                types.TipStatus `json:"status"`
	AssignedTipsterID     string          `json:"assignedTipsterId,omitempty"`
	AssignedTipsterName   string          `json:"assignedTipsterName,omitempty"`
	AssignedTipsterRating float64         `json:"assignedTipsterRating,omitempty"`
}

// Settled reports whether every fixture of the tip has kicked off
func (t *GeneratedTip) Settled(now time.Time) bool {
	if len(t.Fixtures) == 0 {
		return false
	}
	for _, fx := range t.Fixtures {
		if fx.MatchTime.After(now) {
			return false
		}
	}
	return true
}
