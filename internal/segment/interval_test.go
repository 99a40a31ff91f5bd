package segment

import (
	"errors"
	"math/rand"
	"testing"

	"skipper/internal/services"
)

func TestNewRejectsInvalidBounds(t *testing.T) {
	cases := []struct {
		name       string
		start, end float64
		category   Category
		confidence float64
		wantErr    bool
	}{
		{name: "valid", start: 0, end: 30, category: CategoryIntro, confidence: 0.9},
		{name: "negative start", start: -1, end: 30, category: CategoryIntro, confidence: 0.9, wantErr: true},
		{name: "end equals start", start: 10, end: 10, category: CategorySponsor, confidence: 0.9, wantErr: true},
		{name: "end before start", start: 20, end: 10, category: CategorySponsor, confidence: 0.9, wantErr: true},
		{name: "empty category", start: 0, end: 5, category: "", confidence: 0.9, wantErr: true},
		{name: "unknown category", start: 0, end: 5, category: "Gossip", confidence: 0.9, wantErr: true},
		{name: "confidence above one", start: 0, end: 5, category: CategoryOutro, confidence: 1.5, wantErr: true},
		{name: "confidence below zero", start: 0, end: 5, category: CategoryOutro, confidence: -0.1, wantErr: true},
		{name: "zero start allowed", start: 0, end: 0.5, category: CategoryIntro, confidence: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := New(tc.start, tc.end, tc.category, "", tc.confidence)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got interval %+v", iv)
				}
				if !errors.Is(err, services.ErrValidation) {
					t.Errorf("error should wrap ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if iv.ID == "" {
				t.Error("interval should be assigned an ID")
			}
		})
	}
}

func TestNewRejectionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		start := rng.Float64()*200 - 20
		end := rng.Float64()*200 - 20
		_, err := New(start, end, CategorySponsor, "", 0.9)
		shouldFail := start < 0 || end <= start
		if shouldFail && err == nil {
			t.Fatalf("expected rejection for start=%.3f end=%.3f", start, end)
		}
		if !shouldFail && err != nil {
			t.Fatalf("unexpected rejection for start=%.3f end=%.3f: %v", start, end, err)
		}
	}
}

func TestContainsWithBuffer(t *testing.T) {
	iv := mustInterval(t, 15, 45, CategorySponsor, 0.9)

	if !iv.Contains(14.6, 0.5) {
		t.Error("14.6 with buffer 0.5 should be inside [15,45)")
	}
	if iv.Contains(14.0, 0.5) {
		t.Error("14.0 with buffer 0.5 should be outside")
	}
	if iv.Contains(45, 0) {
		t.Error("end is exclusive")
	}
	if !iv.Contains(15, 0) {
		t.Error("start is inclusive")
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a := mustInterval(t, 0, 30, CategoryIntro, 0.9)
	b := mustInterval(t, 25, 40, CategorySponsor, 0.9)
	c := mustInterval(t, 30, 50, CategoryOutro, 0.9)

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Error("[0,30) and [25,40) should overlap")
	}
	if a.Overlaps(c) || c.Overlaps(a) {
		t.Error("touching endpoints must not count as overlap")
	}
}

func TestMerge(t *testing.T) {
	a := mustIntervalDesc(t, 0, 30, CategoryIntro, "cold open", 0.9)
	b := mustIntervalDesc(t, 25, 40, CategorySponsor, "ad read", 0.95)

	merged := a.Merge(b)
	if merged.Start != 0 || merged.End != 40 {
		t.Errorf("merged span = [%.1f,%.1f), want [0,40)", merged.Start, merged.End)
	}
	if merged.Category != "Intro + Sponsor" {
		t.Errorf("merged category = %q, want %q", merged.Category, "Intro + Sponsor")
	}
	if merged.Description != "cold open | ad read" {
		t.Errorf("merged description = %q", merged.Description)
	}
	if merged.Confidence != 0.9 {
		t.Errorf("merged confidence = %.2f, want the conservative minimum 0.9", merged.Confidence)
	}
	if merged.ID == a.ID || merged.ID == b.ID {
		t.Error("merge must produce a fresh identity")
	}
}

func TestMergeSameCategoryAndEmptyDescription(t *testing.T) {
	a := mustIntervalDesc(t, 10, 20, CategorySponsor, "", 0.8)
	b := mustIntervalDesc(t, 15, 25, CategorySponsor, "second read", 0.7)

	merged := a.Merge(b)
	if merged.Category != CategorySponsor {
		t.Errorf("identical categories must stay unchanged, got %q", merged.Category)
	}
	if merged.Description != "second read" {
		t.Errorf("empty description parts must be dropped, got %q", merged.Description)
	}
	if merged.Confidence != 0.7 {
		t.Errorf("confidence = %.2f, want 0.7", merged.Confidence)
	}
}

func TestCategoryParsing(t *testing.T) {
	cases := map[string]Category{
		"Sponsor":    CategorySponsor,
		"sponsor":    CategorySponsor,
		"self promo": CategorySelfPromo,
		"SelfPromo":  CategorySelfPromo,
		"Donations":  CategoryDonations,
		"merch":      CategoryMerchandise,
		"credits":    CategoryAcknowledgments,
		"INTRO":      CategoryIntro,
		"endcards":   CategoryOutro,
	}
	for raw, want := range cases {
		got, err := ParseCategory(raw)
		if err != nil {
			t.Errorf("ParseCategory(%q) failed: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCategory(%q) = %q, want %q", raw, got, want)
		}
	}

	for _, raw := range []string{"", "   ", "Gossip", "Sponsor + Intro"} {
		if _, err := ParseCategory(raw); err == nil {
			t.Errorf("ParseCategory(%q) should fail", raw)
		}
	}
}

func TestCompositeCategoryValidity(t *testing.T) {
	composite := MergeCategories(CategoryIntro, CategorySponsor)
	if !composite.IsComposite() {
		t.Error("merged label should be composite")
	}
	if !composite.Valid() {
		t.Error("composite of base categories should be valid")
	}
	if Category("Intro + Gossip").Valid() {
		t.Error("composite with unknown part should be invalid")
	}
}

func mustInterval(t *testing.T, start, end float64, category Category, confidence float64) Interval {
	t.Helper()
	return mustIntervalDesc(t, start, end, category, "", confidence)
}

func mustIntervalDesc(t *testing.T, start, end float64, category Category, description string, confidence float64) Interval {
	t.Helper()
	iv, err := New(start, end, category, description, confidence)
	if err != nil {
		t.Fatalf("New(%.1f, %.1f, %q): %v", start, end, category, err)
	}
	return iv
}
