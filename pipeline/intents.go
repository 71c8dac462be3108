package pipeline

import (
	"regexp"
	"strings"
)

// Fixed intent patterns. Unlike greeting and low-info patterns these are not
// tenant-configurable.
var (
	recallPattern  = regexp.MustCompile(`(?i)(\b(what|repeat)\b.*\b(last|previous)\b.*\b(message|reply|answer|response|said|thing)\b)|\bsay that again\b|\brepeat (that|yourself)\b`)
	pricingPattern = regexp.MustCompile(`(?i)\b(price|prices|pricing|priced|cost|costs|costing|how much|fee|fees|charge|charges|charging|subscription|subscriptions|monthly|per month|quote)\b`)
	closingPattern = regexp.MustCompile(`(?i)^[\s]*(no|nope|nah|no,? thanks|no,? thank you|that'?s all|that is all|that'?s it|nothing else|i'?m good|all good|all set|i'?m all set)[\s!.,]*(thanks|thank you|bye|goodbye)?[\s!.,]*$`)
)

// Phone keyboards send typographic apostrophes.
var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// IsRecall reports whether the visitor is asking for the previous reply.
func IsRecall(message string) bool { return recallPattern.MatchString(message) }

// IsPricingIntent reports whether the message asks about price.
func IsPricingIntent(message string) bool { return pricingPattern.MatchString(message) }

// IsClosing reports whether the visitor is wrapping up.
func IsClosing(message string) bool {
	return closingPattern.MatchString(apostrophes.Replace(message))
}
