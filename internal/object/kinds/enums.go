package kinds

import "github.com/samber/lo"

// ── Enumerations ───────────────────────────────────────────
// Enumerated API values are kept as the API spells them. A value the
// API adds later still round-trips; Known reports whether it is one of
// the constants below.

type Color string

const (
	White Color = "W"
	Blue  Color = "U"
	Black Color = "B"
	Red   Color = "R"
	Green Color = "G"
)

var colorNames = map[Color]string{
	White: "white",
	Blue:  "blue",
	Black: "black",
	Red:   "red",
	Green: "green",
}

func (c Color) Known() bool {
	_, ok := colorNames[c]
	return ok
}

// Name returns the English color name, or the raw letter.
func (c Color) Name() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return string(c)
}

// ParseColors maps a WUBRG string such as "WU" to its colors.
// Characters outside WUBRG are dropped.
func ParseColors(s string) []Color {
	out := []Color{}
	for _, r := range s {
		if c := Color(string(r)); c.Known() {
			out = append(out, c)
		}
	}
	return out
}

type Layout string

const (
	LayoutNormal           Layout = "normal"
	LayoutSplit            Layout = "split"
	LayoutFlip             Layout = "flip"
	LayoutTransform        Layout = "transform"
	LayoutModalDFC         Layout = "modal_dfc"
	LayoutMeld             Layout = "meld"
	LayoutLeveler          Layout = "leveler"
	LayoutSaga             Layout = "saga"
	LayoutAdventure        Layout = "adventure"
	LayoutPlanar           Layout = "planar"
	LayoutScheme           Layout = "scheme"
	LayoutVanguard         Layout = "vanguard"
	LayoutToken            Layout = "token"
	LayoutDoubleFacedToken Layout = "double_faced_token"
	LayoutEmblem           Layout = "emblem"
	LayoutAugment          Layout = "augment"
	LayoutHost             Layout = "host"
	LayoutArtSeries        Layout = "art_series"
	LayoutReversibleCard   Layout = "reversible_card"
)

var layouts = []Layout{
	LayoutNormal, LayoutSplit, LayoutFlip, LayoutTransform, LayoutModalDFC, LayoutMeld,
	LayoutLeveler, LayoutSaga, LayoutAdventure, LayoutPlanar, LayoutScheme, LayoutVanguard,
	LayoutToken, LayoutDoubleFacedToken, LayoutEmblem, LayoutAugment, LayoutHost,
	LayoutArtSeries, LayoutReversibleCard,
}

func (l Layout) Known() bool { return lo.Contains(layouts, l) }

// MultiFaced reports whether cards of this layout carry card_faces.
func (l Layout) MultiFaced() bool {
	return lo.Contains([]Layout{
		LayoutSplit, LayoutFlip, LayoutTransform, LayoutModalDFC, LayoutAdventure,
		LayoutDoubleFacedToken, LayoutArtSeries, LayoutReversibleCard,
	}, l)
}

type Rarity string

const (
	Common   Rarity = "common"
	Uncommon Rarity = "uncommon"
	Rare     Rarity = "rare"
	Special  Rarity = "special"
	Mythic   Rarity = "mythic"
	Bonus    Rarity = "bonus"
)

func (r Rarity) Known() bool {
	return lo.Contains([]Rarity{Common, Uncommon, Rare, Special, Mythic, Bonus}, r)
}

type BorderColor string

const (
	BorderBlack      BorderColor = "black"
	BorderWhite      BorderColor = "white"
	BorderBorderless BorderColor = "borderless"
	BorderSilver     BorderColor = "silver"
	BorderGold       BorderColor = "gold"
)

func (b BorderColor) Known() bool {
	return lo.Contains([]BorderColor{BorderBlack, BorderWhite, BorderBorderless, BorderSilver, BorderGold}, b)
}

// Frame is the frame generation, named by the year it was introduced.
type Frame string

const (
	Frame1993   Frame = "1993"
	Frame1997   Frame = "1997"
	Frame2003   Frame = "2003"
	Frame2015   Frame = "2015"
	FrameFuture Frame = "future"
)

func (f Frame) Known() bool {
	return lo.Contains([]Frame{Frame1993, Frame1997, Frame2003, Frame2015, FrameFuture}, f)
}

type FrameEffect string

const (
	EffectLegendary      FrameEffect = "legendary"
	EffectMiracle        FrameEffect = "miracle"
	EffectNyxTouched     FrameEffect = "nyxtouched"
	EffectDraft          FrameEffect = "draft"
	EffectDevoid         FrameEffect = "devoid"
	EffectTombstone      FrameEffect = "tombstone"
	EffectColorshifted   FrameEffect = "colorshifted"
	EffectInverted       FrameEffect = "inverted"
	EffectSunMoonDFC     FrameEffect = "sunmoondfc"
	EffectCompassLandDFC FrameEffect = "compasslanddfc"
	EffectOriginPWDFC    FrameEffect = "originpwdfc"
	EffectMoonEldraziDFC FrameEffect = "mooneldrazidfc"
	EffectShowcase       FrameEffect = "showcase"
	EffectExtendedArt    FrameEffect = "extendedart"
	EffectEtched         FrameEffect = "etched"
)

type Game string

const (
	Paper Game = "paper"
	Arena Game = "arena"
	MTGO  Game = "mtgo"
)

func (g Game) Known() bool { return lo.Contains([]Game{Paper, Arena, MTGO}, g) }

type Legality string

const (
	Legal      Legality = "legal"
	NotLegal   Legality = "not_legal"
	Restricted Legality = "restricted"
	Banned     Legality = "banned"
)

func (l Legality) Known() bool {
	return lo.Contains([]Legality{Legal, NotLegal, Restricted, Banned}, l)
}

// Playable reports whether a deck may include the card at all.
func (l Legality) Playable() bool { return l == Legal || l == Restricted }

type SetType string

const (
	SetCore            SetType = "core"
	SetExpansion       SetType = "expansion"
	SetMasters         SetType = "masters"
	SetAlchemy         SetType = "alchemy"
	SetMasterpiece     SetType = "masterpiece"
	SetArsenal         SetType = "arsenal"
	SetFromTheVault    SetType = "from_the_vault"
	SetSpellbook       SetType = "spellbook"
	SetPremiumDeck     SetType = "premium_deck"
	SetDuelDeck        SetType = "duel_deck"
	SetDraftInnovation SetType = "draft_innovation"
	SetTreasureChest   SetType = "treasure_chest"
	SetCommander       SetType = "commander"
	SetPlanechase      SetType = "planechase"
	SetArchenemy       SetType = "archenemy"
	SetVanguard        SetType = "vanguard"
	SetFunny           SetType = "funny"
	SetStarter         SetType = "starter"
	SetBox             SetType = "box"
	SetPromo           SetType = "promo"
	SetToken           SetType = "token"
	SetMemorabilia     SetType = "memorabilia"
	SetMinigame        SetType = "minigame"
)

var setTypes = []SetType{
	SetCore, SetExpansion, SetMasters, SetAlchemy, SetMasterpiece, SetArsenal,
	SetFromTheVault, SetSpellbook, SetPremiumDeck, SetDuelDeck, SetDraftInnovation,
	SetTreasureChest, SetCommander, SetPlanechase, SetArchenemy, SetVanguard, SetFunny,
	SetStarter, SetBox, SetPromo, SetToken, SetMemorabilia, SetMinigame,
}

func (s SetType) Known() bool { return lo.Contains(setTypes, s) }

type RulingSource string

const (
	SourceWotC     RulingSource = "wotc"
	SourceScryfall RulingSource = "scryfall"
)

func (s RulingSource) Known() bool { return s == SourceWotC || s == SourceScryfall }

// Component is the role of a RelatedCard within its parent.
type Component string

const (
	ComponentToken      Component = "token"
	ComponentMeldPart   Component = "meld_part"
	ComponentMeldResult Component = "meld_result"
	ComponentComboPiece Component = "combo_piece"
)

func (c Component) Known() bool {
	return lo.Contains([]Component{ComponentToken, ComponentMeldPart, ComponentMeldResult, ComponentComboPiece}, c)
}

type MigrationStrategy string

const (
	MigrationMerge  MigrationStrategy = "merge"
	MigrationDelete MigrationStrategy = "delete"
)

func (m MigrationStrategy) Known() bool { return m == MigrationMerge || m == MigrationDelete }
