package pipeline

// Stage names the decision stage that produced a reply.
type Stage string

const (
	StageRecall     Stage = "recall"
	StageGreeting   Stage = "greeting"
	StageLowInfo    Stage = "low-info"
	StageSemantic   Stage = "semantic"
	StagePricing    Stage = "pricing"
	StageClosing    Stage = "closing"
	StageGenerative Stage = "generative"
	StageFallback   Stage = "generative-error-fallback"
)

// Decision is the outcome of one turn. It drives the session flag updates
// and logging and is never persisted.
type Decision struct {
	Stage Stage
	Reply string
	// Escalation is 1 when the first fallback text was used and 2 for the
	// second; zero for every other stage.
	Escalation int
	// ErrorNotified is set when the transient-error notice was appended.
	ErrorNotified bool
	// Score is the matcher score for semantic decisions.
	Score float64
}
