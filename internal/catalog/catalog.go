// Package catalog defines the static table of in-game stat actions: which
// counter each action kind increments and how many points it is worth.
// The table is defined once at process start and never mutated.
package catalog

// Field identifies one stat counter on a player's stat line.
type Field string

const (
	FieldCompletions         Field = "completions"
	FieldInterceptionsThrown Field = "interceptionsThrown"
	FieldTDPasses            Field = "tdPasses"
	FieldTouchdowns          Field = "touchdowns"
	FieldReceptions          Field = "receptions"
	FieldRuns                Field = "runs"
	FieldFumbles             Field = "fumbles"
	FieldDefInterceptions    Field = "defInterceptions"
	FieldSacks               Field = "sacks"
	FieldPick6s              Field = "pick6s"
	FieldFlagPulls           Field = "flagPulls"
	FieldSafeties            Field = "safeties"
	FieldExtraPoints1        Field = "extraPoints1"
	FieldExtraPoints2        Field = "extraPoints2"
)

// Kind identifies a discrete in-game event a coach can record.
type Kind string

const (
	KindCompletion         Kind = "completion"
	KindInterceptionThrown Kind = "interception_thrown"
	KindTDPass             Kind = "td_pass"
	KindTouchdown          Kind = "touchdown"
	KindTDRun              Kind = "td_run"
	KindReception          Kind = "reception"
	KindRun                Kind = "run"
	KindFumble             Kind = "fumble"
	KindInterception       Kind = "interception"
	KindSack               Kind = "sack"
	KindPick6              Kind = "pick_6"
	KindFlagPull           Kind = "flag_pull"
	KindSafety             Kind = "safety"
	KindExtraPoint1        Kind = "extra_point_1"
	KindExtraPoint2        Kind = "extra_point_2"
)

// Action maps an action kind to its target counter and point behavior.
// A scoring action posts points to the score ledger for the acting
// player's side; a variable-points action has no fixed value and the
// caller must supply the points (e.g. interception return for 1/2/6).
type Action struct {
	Kind           Kind  `json:"kind"`
	Field          Field `json:"field"`
	Points         int   `json:"points"`
	VariablePoints bool  `json:"variablePoints"`
	Scoring        bool  `json:"scoring"`
}

// Actions is the catalog of all recordable stat actions.
// NOTE: td_run and touchdown both land on the touchdowns counter; the
// older UI exposed a generic touchdown button alongside the typed ones.
var Actions = map[Kind]Action{
	KindCompletion:         {Kind: KindCompletion, Field: FieldCompletions},
	KindInterceptionThrown: {Kind: KindInterceptionThrown, Field: FieldInterceptionsThrown},
	KindTDPass:             {Kind: KindTDPass, Field: FieldTDPasses, Points: 6, Scoring: true},
	KindTouchdown:          {Kind: KindTouchdown, Field: FieldTouchdowns, Points: 6, Scoring: true},
	KindTDRun:              {Kind: KindTDRun, Field: FieldTouchdowns, Points: 6, Scoring: true},
	KindReception:          {Kind: KindReception, Field: FieldReceptions},
	KindRun:                {Kind: KindRun, Field: FieldRuns},
	KindFumble:             {Kind: KindFumble, Field: FieldFumbles},
	KindInterception:       {Kind: KindInterception, Field: FieldDefInterceptions, VariablePoints: true, Scoring: true},
	KindSack:               {Kind: KindSack, Field: FieldSacks},
	KindPick6:              {Kind: KindPick6, Field: FieldPick6s, Points: 6, Scoring: true},
	KindFlagPull:           {Kind: KindFlagPull, Field: FieldFlagPulls},
	KindSafety:             {Kind: KindSafety, Field: FieldSafeties, Points: 2, Scoring: true},
	KindExtraPoint1:        {Kind: KindExtraPoint1, Field: FieldExtraPoints1, Points: 1, Scoring: true},
	KindExtraPoint2:        {Kind: KindExtraPoint2, Field: FieldExtraPoints2, Points: 2, Scoring: true},
}

// weights are the per-counter point values used to derive a stat line's
// total points. Touchdown-class fields are worth 6, pick-6 is worth 6,
// a safety 2 and extra points 1/2. Everything else carries no weight:
// a raw defensive interception counts on the stat line but scores only
// through the points the caller attributes to the play.
var weights = map[Field]int{
	FieldTDPasses:     6,
	FieldTouchdowns:   6,
	FieldPick6s:       6,
	FieldSafeties:     2,
	FieldExtraPoints1: 1,
	FieldExtraPoints2: 2,
}

// Fields lists every counter field in a stable order, matching the
// column order of the season aggregate store.
var Fields = []Field{
	FieldCompletions,
	FieldInterceptionsThrown,
	FieldTDPasses,
	FieldTouchdowns,
	FieldReceptions,
	FieldRuns,
	FieldFumbles,
	FieldDefInterceptions,
	FieldSacks,
	FieldPick6s,
	FieldFlagPulls,
	FieldSafeties,
	FieldExtraPoints1,
	FieldExtraPoints2,
}

// Lookup returns the catalog entry for a kind.
func Lookup(kind Kind) (Action, bool) {
	a, ok := Actions[kind]
	return a, ok
}

// Weight returns the point value a single increment of the field
// contributes to a stat line's total points.
func Weight(f Field) int {
	return weights[f]
}

// TotalPoints derives the weighted point total for a set of counters.
// Totals are always recomputed from counters, never stored, so the
// weights table stays the single source of truth.
func TotalPoints(counters map[Field]int) int {
	total := 0
	for f, n := range counters {
		total += n * weights[f]
	}
	return total
}
