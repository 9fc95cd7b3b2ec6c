package domain

// Outcome is the result class of a score line.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// ClassifyOutcome maps goal counts to an outcome class.
func ClassifyOutcome(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case home < away:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// Precision grades how close a prediction came to the actual score.
type Precision int

const (
	PrecisionWrong Precision = iota
	PrecisionOutcome
	PrecisionClose
	PrecisionPerfect
)

func (p Precision) String() string {
	switch p {
	case PrecisionPerfect:
		return "perfect"
	case PrecisionClose:
		return "close"
	case PrecisionOutcome:
		return "outcome"
	default:
		return "wrong"
	}
}

// ComparePrediction is the single source of truth for bet correctness.
// Close means same goal-difference magnitude and total goals within 2.
func ComparePrediction(predHome, predAway, actualHome, actualAway int) Precision {
	if ClassifyOutcome(predHome, predAway) != ClassifyOutcome(actualHome, actualAway) {
		return PrecisionWrong
	}
	if predHome == actualHome && predAway == actualAway {
		return PrecisionPerfect
	}
	sameMargin := abs(predHome-predAway) == abs(actualHome-actualAway)
	if sameMargin && abs((predHome+predAway)-(actualHome+actualAway)) <= 2 {
		return PrecisionClose
	}
	return PrecisionOutcome
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
