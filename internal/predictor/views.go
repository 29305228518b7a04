package predictor

import (
	"github.com/codergirlprerna/t20-predictor/backend/internal/display"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
)

// TeamView is a points table row with display fields
type TeamView struct {
	tournament.Team
	Code    string `json:"code"`
	FlagURL string `json:"flagUrl,omitempty"`
	Label   string `json:"label"`
}

// StandingsView is the dashboard payload
type StandingsView struct {
	PointsTable          []TeamView           `json:"pointsTable"`
	QualificationChances []tournament.Chance  `json:"qualificationChances"`
	Fixtures             []tournament.Fixture `json:"fixtures"`
	LastUpdated          int64                `json:"lastUpdated"` // unix ms
}

// GroupChancesView is one group's baseline
type GroupChancesView struct {
	Group       qualification.GroupID `json:"group"`
	Chances     []tournament.Chance   `json:"chances"`
	LastUpdated int64                 `json:"lastUpdated"`
}

// ImpactView is one team's line in a prediction
type ImpactView struct {
	TeamID       qualification.TeamID     `json:"teamId"`
	TeamName     string                   `json:"teamName"`
	ShortName    string                   `json:"shortName"`
	FlagEmoji    string                   `json:"flagEmoji"`
	BeforeChance qualification.Percentage `json:"beforeChance"`
	AfterChance  qualification.Percentage `json:"afterChance"`
	Change       float64                  `json:"change"`
	Direction    qualification.Direction  `json:"direction"`
}

// PredictionView is the /api/predict payload
type PredictionView struct {
	ID            string                `json:"id,omitempty"`
	Group         qualification.GroupID `json:"group"`
	Winner        ImpactView            `json:"winner"`
	Loser         ImpactView            `json:"loser"`
	RippleEffects []ImpactView          `json:"rippleEffects"`
	LastUpdated   int64                 `json:"lastUpdated"`
}

func newTeamView(t tournament.Team) TeamView {
	info := display.Info{Name: t.Name, ShortName: t.ShortName, Flag: t.FlagEmoji}
	return TeamView{
		Team:    t,
		Code:    display.Code(info),
		FlagURL: display.FlagURL(info),
		Label:   display.Label(info),
	}
}

func newImpactView(snap *tournament.Snapshot, ti qualification.TeamImpact) ImpactView {
	v := ImpactView{
		TeamID:       ti.TeamID,
		TeamName:     ti.Name,
		BeforeChance: ti.Before,
		AfterChance:  ti.After,
		Change:       ti.Change,
		Direction:    ti.Direction,
	}
	if t, ok := snap.TeamByID(ti.TeamID); ok {
		info := display.Info{Name: t.Name, ShortName: t.ShortName, Flag: t.FlagEmoji}
		v.ShortName = display.Code(info)
		v.FlagEmoji = display.Flag(info)
	}
	return v
}

func newPredictionView(snap *tournament.Snapshot, res *qualification.ImpactResult) *PredictionView {
	view := &PredictionView{
		Group:         res.Group,
		Winner:        newImpactView(snap, res.Winner),
		Loser:         newImpactView(snap, res.Loser),
		RippleEffects: make([]ImpactView, 0, len(res.Ripples)),
		LastUpdated:   snap.Version(),
	}
	for _, r := range res.Ripples {
		view.RippleEffects = append(view.RippleEffects, newImpactView(snap, r))
	}
	return view
}
