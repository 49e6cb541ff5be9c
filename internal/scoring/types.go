// Package scoring implements the match scoring engine: the Match/Set/Game
// entity tree and the configurable rules that decide when each level has a
// winner and whether further play is allowed. The package is pure in-memory
// state; persistence and presentation live elsewhere.
package scoring

// Team identifies one of the two competing sides.
type Team string

const (
	TeamUs   Team = "us"
	TeamThem Team = "them"
)

// Valid reports whether t is one of the two known sides.
func (t Team) Valid() bool {
	return t == TeamUs || t == TeamThem
}

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamUs {
		return TeamThem
	}
	return TeamUs
}

// Sport selects default rule presets and presentation. It never changes
// engine behavior.
type Sport string

const (
	SportVolleyball Sport = "volleyball"
	SportSquash     Sport = "squash"
	SportUltimate   Sport = "ultimate"
)

func (s Sport) Valid() bool {
	switch s {
	case SportVolleyball, SportSquash, SportUltimate:
		return true
	}
	return false
}

// Environment is presentation-only metadata carried on matches and templates.
type Environment string

const (
	EnvironmentIndoor  Environment = "indoor"
	EnvironmentOutdoor Environment = "outdoor"
)

func (e Environment) Valid() bool {
	return e == EnvironmentIndoor || e == EnvironmentOutdoor
}

// TemplateColor is the accent color a template is shown with.
type TemplateColor string

const (
	ColorGreen  TemplateColor = "green"
	ColorYellow TemplateColor = "yellow"
	ColorIndigo TemplateColor = "indigo"
	ColorPurple TemplateColor = "purple"
	ColorTeal   TemplateColor = "teal"
	ColorBlue   TemplateColor = "blue"
	ColorOrange TemplateColor = "orange"
	ColorPink   TemplateColor = "pink"
)

// TemplateColors lists every color in display order.
func TemplateColors() []TemplateColor {
	return []TemplateColor{
		ColorGreen, ColorYellow, ColorIndigo, ColorPurple,
		ColorTeal, ColorBlue, ColorOrange, ColorPink,
	}
}

func (c TemplateColor) Valid() bool {
	for _, known := range TemplateColors() {
		if c == known {
			return true
		}
	}
	return false
}

// WarmupRule says whether a match created from a template begins with an
// open-ended warmup phase before its first game.
type WarmupRule string

const (
	WarmupNone WarmupRule = "none"
	WarmupOpen WarmupRule = "open"
)

func (w WarmupRule) Valid() bool {
	return w == WarmupNone || w == WarmupOpen
}
