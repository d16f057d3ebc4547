package moderation

import (
	"strings"

	"chatfeed/internal/model"
)

// cleanToken is the reply fragment that marks a message as acceptable.
const cleanToken = "OK"

type Verdict struct {
	IsViolation bool
	Notice      string
	Category    model.ViolationType
}

// Allow is the verdict used when a message passes, including when the
// classifier could not be reached.
func Allow() Verdict {
	return Verdict{}
}

// ParseVerdict turns a free-text classifier reply into a verdict. Any reply
// containing "OK" passes; everything else is a violation and the reply itself
// becomes the notice shown in the feed. This assumes the model never writes
// "OK" inside a warning sentence.
func ParseVerdict(reply string) Verdict {
	if strings.Contains(reply, cleanToken) {
		return Allow()
	}
	return Verdict{
		IsViolation: true,
		Notice:      reply,
		Category:    model.ViolationRacism,
	}
}
