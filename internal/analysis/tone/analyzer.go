package tone

import "strings"

// Label is the buyer tone recognised in free-form messages.
type Label string

const (
	Neutral    Label = "neutral"
	Eager      Label = "eager"
	Hesitant   Label = "hesitant"
	Frustrated Label = "frustrated"
	Curious    Label = "curious"
)

// Decision is the detected tone and how strongly it showed.
type Decision struct {
	Tone  Label
	Score int
}

var keywordBuckets = map[Label][]string{
	Eager: {
		"love it", "want it", "i'll take", "ready to buy", "need it", "perfect", "awesome", "great",
		"can't wait", "excited", "deal", "sounds good", "let's do",
	},
	Hesitant: {
		"not sure", "maybe", "thinking", "expensive", "too much", "budget", "afford", "hmm",
		"pricey", "cheaper", "elsewhere", "competitor", "wait", "later",
	},
	Frustrated: {
		"ridiculous", "ripoff", "rip-off", "scam", "annoyed", "waste", "come on", "seriously",
		"unfair", "insulting", "joke", "forget it", "angry",
	},
	Curious: {
		"warranty", "shipping", "delivery", "battery", "specs", "color", "colour", "weight",
		"return", "include", "how", "what", "which", "does it", "is it", "can it",
	},
}

// Analyze scores buyer text against the keyword buckets. Question marks lean
// curious and repeated exclamations lean frustrated unless eager words win.
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Tone: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if strings.Contains(normalized, "?") {
		scores[Curious] += 2
	}
	if exclamations := strings.Count(normalized, "!"); exclamations > 1 {
		scores[Frustrated] += exclamations
	}

	best := Neutral
	bestScore := 0
	// fixed order keeps ties deterministic
	for _, label := range []Label{Frustrated, Eager, Hesitant, Curious} {
		if scores[label] > bestScore {
			best = label
			bestScore = scores[label]
		}
	}

	return Decision{Tone: best, Score: bestScore}
}

// StyleHint tells the seller how to pitch its reply for the given tone.
func StyleHint(label Label) string {
	switch label {
	case Eager:
		return "The customer sounds keen. Be warm and help them close, without volunteering extra discounts."
	case Hesitant:
		return "The customer sounds unsure about the price. Reassure them about value before talking numbers."
	case Frustrated:
		return "The customer sounds frustrated. Stay calm and courteous and acknowledge their concern."
	case Curious:
		return "The customer is asking about the product. Answer helpfully and concisely."
	default:
		return ""
	}
}
