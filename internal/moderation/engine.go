package moderation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is one entry in the fixed moderation policy. Rules are evaluated in
// slice order and the first rule that matches decides the outcome; later
// categories are not consulted even if they would also match.
type Rule struct {
	Type    string
	Reason  string
	Pattern *regexp.Regexp
}

// Result is the outcome of scanning one message.
type Result struct {
	Allowed   bool
	Moderated string
	Reason    string
	Type      string
}

const maskRune = '*'

// Category labels recorded in moderation logs.
const (
	TypeProfanity     = "profanity"
	TypeHateSpeech    = "hate_speech"
	TypePersonalInfo  = "personal_info"
	TypeConcerning    = "concerning"
	TypeInappropriate = "inappropriate"
)

// defaultRules is the priority-ordered policy. Order matters: hate speech
// outranks profanity, personal info outranks the vaguer categories.
var defaultRules = []Rule{
	{
		Type:    TypeHateSpeech,
		Reason:  "Hate speech is not tolerated",
		Pattern: regexp.MustCompile(`(?i)\b(nazi|kkk|white\s+power|gas\s+the|lynch(?:ing)?)\b`),
	},
	{
		Type:    TypeProfanity,
		Reason:  "Profanity is not allowed in chat",
		Pattern: regexp.MustCompile(`(?i)\b(fuck\w*|shit\w*|bitch\w*|asshole\w*|cunt\w*|dickhead\w*)\b`),
	},
	{
		Type:    TypePersonalInfo,
		Reason:  "Do not share personal information",
		Pattern: regexp.MustCompile(`\b(?:\d{3}[-.\s]\d{3}[-.\s]\d{4}|\d{1,5}\s+\w+\s+(?:street|st|avenue|ave|road|rd|drive|dr)\b)`),
	},
	{
		Type:    TypeConcerning,
		Reason:  "Message flagged for concerning content",
		Pattern: regexp.MustCompile(`(?i)\b(kill\s+(?:yourself|myself)|kms|kys|suicide|self[-\s]harm)\b`),
	},
	{
		Type:    TypeInappropriate,
		Reason:  "Inappropriate content for this platform",
		Pattern: regexp.MustCompile(`(?i)\b(porn\w*|nudes?|onlyfans|sexting)\b`),
	},
}

// Engine scans chat messages against the rule set.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine with the default policy.
func NewEngine() *Engine {
	return &Engine{rules: defaultRules}
}

// NewEngineWithRules returns an engine with a custom priority-ordered policy.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Moderate scans content. Clean text comes back unchanged with Allowed=true.
// On a violation, every occurrence of the matched rule's pattern is replaced
// by an equal-length run of mask characters and the message still posts in
// redacted form; the caller is responsible for logging the original and
// incrementing the sender's strikes.
func (e *Engine) Moderate(content string) Result {
	for _, rule := range e.rules {
		if !rule.Pattern.MatchString(content) {
			continue
		}

		redacted := rule.Pattern.ReplaceAllStringFunc(content, func(match string) string {
			return strings.Repeat(string(maskRune), utf8.RuneCountInString(match))
		})

		return Result{
			Allowed:   false,
			Moderated: redacted,
			Reason:    rule.Reason,
			Type:      rule.Type,
		}
	}

	return Result{Allowed: true, Moderated: content}
}
