package mcpserver

import (
	"errors"
	"strings"

	"github.com/samber/lo"

	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

// apiError reports whether err carries an API error payload, and its
// message.
func apiError(err error) (string, bool) {
	var e *object.Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Error(), true
}

type cardSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ManaCost        string `json:"manaCost,omitempty"`
	TypeLine        string `json:"typeLine"`
	OracleText      string `json:"oracleText,omitempty"`
	Colors          string `json:"colors,omitempty"`
	Set             string `json:"set"`
	CollectorNumber string `json:"collectorNumber"`
	Rarity          string `json:"rarity"`
	USD             string `json:"usd,omitempty"`
}

func summarizeCard(c *kinds.Card) cardSummary {
	return cardSummary{
		ID:              c.ID.String(),
		Name:            c.Name,
		ManaCost:        c.ManaCost,
		TypeLine:        c.TypeLine,
		OracleText:      c.OracleText,
		Colors:          strings.Join(lo.Map(c.Colors, func(col kinds.Color, _ int) string { return string(col) }), ""),
		Set:             c.Set,
		CollectorNumber: c.CollectorNumber,
		Rarity:          string(c.Rarity),
		USD:             c.Prices.USD,
	}
}

type setSummary struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	SetType    string `json:"setType"`
	ReleasedAt string `json:"releasedAt,omitempty"`
	CardCount  int    `json:"cardCount"`
	Digital    bool   `json:"digital,omitempty"`
}

func summarizeSet(s *kinds.Set) setSummary {
	out := setSummary{
		Code:      s.Code,
		Name:      s.Name,
		SetType:   string(s.SetType),
		CardCount: s.CardCount,
		Digital:   s.Digital,
	}
	if !s.ReleasedAt.IsZero() {
		out.ReleasedAt = s.ReleasedAt.Format(record.DateLayout)
	}
	return out
}
