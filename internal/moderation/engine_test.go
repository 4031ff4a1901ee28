package moderation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestModerate_CleanTextUnchanged(t *testing.T) {
	engine := NewEngine()

	tests := []string{
		"hello everyone",
		"who wants to play snake?",
		"I got 90 points on word scramble",
		"",
		"just a perfectly normal sentence with numbers 12345",
	}

	for _, content := range tests {
		res := engine.Moderate(content)
		if !res.Allowed {
			t.Errorf("Expected %q to be allowed, got blocked with type %s", content, res.Type)
		}
		if res.Moderated != content {
			t.Errorf("Expected clean text unchanged, got %q from %q", res.Moderated, content)
		}
		if res.Type != "" || res.Reason != "" {
			t.Errorf("Expected empty type/reason for clean text, got %q/%q", res.Type, res.Reason)
		}
	}
}

func TestModerate_ProfanityMasked(t *testing.T) {
	engine := NewEngine()

	res := engine.Moderate("you are a fucking idiot")
	if res.Allowed {
		t.Fatal("Expected violation")
	}
	if res.Type != TypeProfanity {
		t.Errorf("Expected type %s, got %s", TypeProfanity, res.Type)
	}
	if res.Moderated != "you are a ******* idiot" {
		t.Errorf("Expected masked message, got %q", res.Moderated)
	}
}

func TestModerate_MaskLengthMatchesMatch(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		content string
		match   string
	}{
		{"what the fuck", "fuck"},
		{"total bullshit here", ""}, // "bullshit" is not a word boundary match for shit
		{"shitstorm incoming", "shitstorm"},
	}

	for _, tt := range tests {
		res := engine.Moderate(tt.content)
		if tt.match == "" {
			if !res.Allowed {
				t.Errorf("Expected %q to pass, got blocked", tt.content)
			}
			continue
		}
		if res.Allowed {
			t.Errorf("Expected %q to be blocked", tt.content)
			continue
		}
		mask := strings.Repeat("*", utf8.RuneCountInString(tt.match))
		want := strings.Replace(tt.content, tt.match, mask, 1)
		if res.Moderated != want {
			t.Errorf("Expected %q, got %q", want, res.Moderated)
		}
	}
}

func TestModerate_AllOccurrencesOfMatchedRuleMasked(t *testing.T) {
	engine := NewEngine()

	res := engine.Moderate("fuck this and fuck that")
	if res.Moderated != "**** this and **** that" {
		t.Errorf("Expected both occurrences masked, got %q", res.Moderated)
	}
}

// A message violating several categories records only the first matching
// rule in priority order. Known policy limitation, pinned here on purpose.
func TestModerate_FirstMatchWins(t *testing.T) {
	engine := NewEngine()

	res := engine.Moderate("fucking nazi")
	if res.Allowed {
		t.Fatal("Expected violation")
	}
	if res.Type != TypeHateSpeech {
		t.Errorf("Expected hate_speech to outrank profanity, got %s", res.Type)
	}
	// Only the hate speech pattern is redacted; the profanity survives the
	// single-pass policy.
	if res.Moderated != "fucking ****" {
		t.Errorf("Expected only first category masked, got %q", res.Moderated)
	}
}

func TestModerate_PersonalInfo(t *testing.T) {
	engine := NewEngine()

	res := engine.Moderate("call me at 555-123-4567 tonight")
	if res.Allowed {
		t.Fatal("Expected phone number to be blocked")
	}
	if res.Type != TypePersonalInfo {
		t.Errorf("Expected type %s, got %s", TypePersonalInfo, res.Type)
	}
	if strings.Contains(res.Moderated, "555") {
		t.Errorf("Expected number redacted, got %q", res.Moderated)
	}
}

func TestModerate_ConcerningContent(t *testing.T) {
	engine := NewEngine()

	res := engine.Moderate("just kys already")
	if res.Allowed {
		t.Fatal("Expected violation")
	}
	if res.Type != TypeConcerning {
		t.Errorf("Expected type %s, got %s", TypeConcerning, res.Type)
	}
}

func TestModerate_CustomRuleOrder(t *testing.T) {
	// Reversed priority: profanity rule first means it wins on mixed input.
	rules := []Rule{defaultRules[1], defaultRules[0]}
	engine := NewEngineWithRules(rules)

	res := engine.Moderate("fucking nazi")
	if res.Type != TypeProfanity {
		t.Errorf("Expected rule order to decide the category, got %s", res.Type)
	}
}
