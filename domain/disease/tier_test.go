package disease

import (
	"testing"
)

// TestClassifyExactSets verifies every catalogued name resolves to its own tier
func TestClassifyExactSets(t *testing.T) {
	for name := range tierAExact {
		if got := Classify(name); got != TierA {
			t.Errorf("Classify(%q) = %v, want TierA", name, got)
		}
	}
	for name := range tierBExact {
		if got := Classify(name); got != TierB {
			t.Errorf("Classify(%q) = %v, want TierB", name, got)
		}
	}
	for name := range tierCExact {
		if got := Classify(name); got != TierC {
			t.Errorf("Classify(%q) = %v, want TierC", name, got)
		}
	}
}

// TestClassifyKeywordFallbacks verifies subtype spellings outside the exact sets
func TestClassifyKeywordFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Tier
	}{
		{"hepatitis subtype", "戊型病毒性肝炎", TierB},
		{"hepatitis short form", "乙型肝炎", TierB},
		{"syphilis subtype", "隐性梅毒", TierB},
		{"anthrax subtype", "皮肤炭疽", TierB},
		{"hiv token", "艾滋病病毒感染者", TierB},
		{"diarrheal subtype", "感染性腹泻", TierC},
		{"typhus token", "斑疹伤寒", TierC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestClassifyPrecedence verifies the fixed evaluation order
func TestClassifyPrecedence(t *testing.T) {
	// Exact TierC membership is reached before the TierC keyword stage,
	// and TierB keyword scanning does not capture TierC exact names.
	if got := Classify("流行性斑疹伤寒"); got != TierC {
		t.Errorf("Classify(流行性斑疹伤寒) = %v, want TierC", got)
	}
	// TierA wins outright.
	if got := Classify("霍乱"); got != TierA {
		t.Errorf("Classify(霍乱) = %v, want TierA", got)
	}
	// TierB exact beats the keyword route to the same answer.
	if got := Classify("病毒性肝炎"); got != TierB {
		t.Errorf("Classify(病毒性肝炎) = %v, want TierB", got)
	}
}

// TestClassifyNormalization verifies whitespace stripping before lookup
func TestClassifyNormalization(t *testing.T) {
	tests := []struct {
		input    string
		expected Tier
	}{
		{" 鼠疫 ", TierA},
		{"鼠 疫", TierA},
		{"肺　结核", TierB}, // full-width space
		{"手足口病\n", TierC},
	}

	for _, tt := range tests {
		if got := Classify(tt.input); got != tt.expected {
			t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// TestClassifyUnclassified verifies names matching no rule
func TestClassifyUnclassified(t *testing.T) {
	for _, input := range []string{"", "发热待查", "水痘", "common cold"} {
		if got := Classify(input); got != Unclassified {
			t.Errorf("Classify(%q) = %v, want Unclassified", input, got)
		}
	}
}

// TestTierDisplayName verifies report labels
func TestTierDisplayName(t *testing.T) {
	tests := []struct {
		tier     Tier
		expected string
	}{
		{TierA, "Class A"},
		{TierB, "Class B"},
		{TierC, "Class C"},
		{Unclassified, "Unclassified"},
		{Tier("bogus"), "Unclassified"},
	}

	for _, tt := range tests {
		if got := tt.tier.DisplayName(); got != tt.expected {
			t.Errorf("DisplayName(%v) = %q, want %q", tt.tier, got, tt.expected)
		}
	}
}
