package catalog

import "testing"

// TestLookup verifies catalog entries resolve with the expected mapping
func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		field   Field
		points  int
		scoring bool
	}{
		{"completion is unscored", KindCompletion, FieldCompletions, 0, false},
		{"td pass worth 6", KindTDPass, FieldTDPasses, 6, true},
		{"td run lands on touchdowns", KindTDRun, FieldTouchdowns, 6, true},
		{"generic touchdown lands on touchdowns", KindTouchdown, FieldTouchdowns, 6, true},
		{"safety worth 2", KindSafety, FieldSafeties, 2, true},
		{"one point conversion", KindExtraPoint1, FieldExtraPoints1, 1, true},
		{"two point conversion", KindExtraPoint2, FieldExtraPoints2, 2, true},
		{"flag pull is unscored", KindFlagPull, FieldFlagPulls, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := Lookup(tt.kind)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.kind)
			}
			if a.Field != tt.field {
				t.Errorf("Field = %q, want %q", a.Field, tt.field)
			}
			if a.Points != tt.points {
				t.Errorf("Points = %d, want %d", a.Points, tt.points)
			}
			if a.Scoring != tt.scoring {
				t.Errorf("Scoring = %v, want %v", a.Scoring, tt.scoring)
			}
		})
	}
}

// TestLookupUnknownKind verifies unknown kinds are rejected
func TestLookupUnknownKind(t *testing.T) {
	if _, ok := Lookup(Kind("field_goal")); ok {
		t.Error("Lookup should not resolve unknown kinds")
	}
}

// TestInterceptionRequiresCallerPoints verifies the interception entry
// carries no fixed value
func TestInterceptionRequiresCallerPoints(t *testing.T) {
	a, ok := Lookup(KindInterception)
	if !ok {
		t.Fatal("interception missing from catalog")
	}
	if !a.VariablePoints {
		t.Error("interception should require caller-supplied points")
	}
	if a.Points != 0 {
		t.Errorf("interception fixed points = %d, want 0", a.Points)
	}
	if a.Field != FieldDefInterceptions {
		t.Errorf("interception field = %q, want %q", a.Field, FieldDefInterceptions)
	}
}

// TestTotalPoints verifies weighted total derivation
func TestTotalPoints(t *testing.T) {
	counters := map[Field]int{
		FieldTouchdowns:   1,
		FieldExtraPoints1: 1,
		FieldCompletions:  12, // weightless
		FieldFlagPulls:    4,  // weightless
	}
	if got := TotalPoints(counters); got != 7 {
		t.Errorf("TotalPoints = %d, want 7", got)
	}

	if got := TotalPoints(nil); got != 0 {
		t.Errorf("TotalPoints(nil) = %d, want 0", got)
	}
}

// TestEveryActionFieldListed verifies every catalog entry targets a
// field present in the stable field list
func TestEveryActionFieldListed(t *testing.T) {
	listed := make(map[Field]bool, len(Fields))
	for _, f := range Fields {
		listed[f] = true
	}
	for kind, a := range Actions {
		if !listed[a.Field] {
			t.Errorf("action %q targets unlisted field %q", kind, a.Field)
		}
	}
}
