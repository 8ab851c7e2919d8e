package domain

import (
	"math"
	"strings"
	"unicode"
)

// ActionKind names the kind of a pending action as it is stored
type ActionKind string

const (
	KindCreatingPair        ActionKind = "creating_pair"
	KindDeletingPair        ActionKind = "deleting_pair"
	KindUpdatingPollingRate ActionKind = "updating_polling_rate"
	KindOpenQuestion        ActionKind = "open_question"
)

// Action is the single in-flight multi-step operation of a user.
// A nil Action means there is no pending operation.
type Action interface {
	Kind() ActionKind
	isAction()
}

// CreatingPair collects a new pair. Source is empty until the user sends it;
// Suggestion holds a machine translation the user may accept with "+".
type CreatingPair struct {
	Source     string
	Suggestion string
}

// DeletingPair waits for the source text of the pair to deactivate
type DeletingPair struct{}

// UpdatingPollingRate waits for the amount of Unit between polls
type UpdatingPollingRate struct {
	Unit TimeUnit
}

// OpenQuestion waits for a free-text answer to Question
type OpenQuestion struct {
	Question   string
	Answer     string
	PairSource string
	TipLength  int
}

func (CreatingPair) Kind() ActionKind        { return KindCreatingPair }
func (DeletingPair) Kind() ActionKind        { return KindDeletingPair }
func (UpdatingPollingRate) Kind() ActionKind { return KindUpdatingPollingRate }
func (OpenQuestion) Kind() ActionKind        { return KindOpenQuestion }

func (CreatingPair) isAction()        {}
func (DeletingPair) isAction()        {}
func (UpdatingPollingRate) isAction() {}
func (OpenQuestion) isAction()        {}

const (
	tipGrowth = 1.7
	tipFiller = '*'
)

// AcceptedAnswers returns the lower-cased answers that count as correct:
// the full answer plus every comma-separated alternative with parenthesised
// segments removed.
func (q OpenQuestion) AcceptedAnswers() []string {
	seen := map[string]bool{}
	var accepted []string
	add := func(s string) {
		s = normalizeAnswer(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		accepted = append(accepted, s)
	}

	add(q.Answer)
	for _, alt := range strings.Split(q.Answer, ",") {
		stripped := stripParenthesised(alt)
		if strings.TrimSpace(stripped) == "" {
			// the whole alternative was in parentheses
			stripped = strings.Trim(strings.TrimSpace(alt), "()")
		}
		add(stripped)
	}
	return accepted
}

// Accepts reports whether text is a correct answer, ignoring case
func (q OpenQuestion) Accepts(text string) bool {
	text = normalizeAnswer(text)
	if text == "" {
		return false
	}
	for _, a := range q.AcceptedAnswers() {
		if a == text {
			return true
		}
	}
	return false
}

// WithNextTip returns the question with a longer revealed prefix.
// The prefix grows by tipGrowth, at least one rune per miss, up to the answer length.
func (q OpenQuestion) WithNextTip() OpenQuestion {
	next := int(math.Round(float64(q.TipLength) * tipGrowth))
	if next < q.TipLength+1 {
		next = q.TipLength + 1
	}
	if n := len([]rune(q.Answer)); next > n {
		next = n
	}
	q.TipLength = next
	return q
}

// Hint renders the answer with the first TipLength runes revealed and the
// remaining letters and digits masked
func (q OpenQuestion) Hint() string {
	var b strings.Builder
	for i, r := range []rune(q.Answer) {
		switch {
		case i < q.TipLength:
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(tipFiller)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func stripParenthesised(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
