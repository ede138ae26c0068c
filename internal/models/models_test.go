package models

import "testing"

func TestValidPersonality(t *testing.T) {
	for _, p := range []Personality{PersonalityZen, PersonalityBold, PersonalityPlayful, PersonalityLuxe, PersonalityTechy, PersonalityEarthy, PersonalityRetro} {
		if !ValidPersonality(p) {
			t.Errorf("%s should be valid", p)
		}
	}
	for _, p := range []Personality{"", "zen", "GOTH"} {
		if ValidPersonality(p) {
			t.Errorf("%q should be invalid", p)
		}
	}
}

func TestClampPace(t *testing.T) {
	cases := []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {3, 3}, {5, 5}, {9, 5},
	}
	for _, tc := range cases {
		p := UserProfile{Pace: tc.in}
		p.ClampPace()
		if p.Pace != tc.want {
			t.Errorf("ClampPace(%d): want=%d got=%d", tc.in, tc.want, p.Pace)
		}
	}
}

func TestBlueprintComplete(t *testing.T) {
	if (Blueprint{Strategy: "s", VisualMetaphor: "v"}).Complete() {
		t.Error("missing copy angle should be incomplete")
	}
	if !(Blueprint{Strategy: "s", VisualMetaphor: "v", CopyAngle: "c"}).Complete() {
		t.Error("full blueprint should be complete")
	}
}

func TestProfilePatchApply(t *testing.T) {
	personality := PersonalityRetro
	tone := "nostalgic"
	pace := 7
	patch := ProfilePatch{
		Personality: &personality,
		Tone:        &tone,
		Pace:        &pace,
	}
	profile := UserProfile{
		Name:        "ada",
		Personality: PersonalityZen,
		Interests:   []string{"ceramics"},
		Tone:        "soft",
		Pace:        2,
	}
	patch.Apply(&profile)

	if profile.Personality != PersonalityRetro {
		t.Errorf("personality: got=%s", profile.Personality)
	}
	if profile.Tone != "nostalgic" {
		t.Errorf("tone: got=%s", profile.Tone)
	}
	// A patched pace is clamped back into range.
	if profile.Pace != 5 {
		t.Errorf("pace: want=5 got=%d", profile.Pace)
	}
	// Untouched fields survive.
	if profile.Name != "ada" || len(profile.Interests) != 1 {
		t.Errorf("untouched fields changed: %+v", profile)
	}
}

func TestProfilePatchIgnoresInvalidValues(t *testing.T) {
	bad := Personality("GOTH")
	empty := ""
	patch := ProfilePatch{Personality: &bad, Tone: &empty}
	profile := UserProfile{Personality: PersonalityZen, Tone: "soft"}
	patch.Apply(&profile)

	if profile.Personality != PersonalityZen {
		t.Errorf("invalid personality must be ignored, got %s", profile.Personality)
	}
	if profile.Tone != "soft" {
		t.Errorf("empty tone must be ignored, got %q", profile.Tone)
	}
}
