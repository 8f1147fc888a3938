package studio

// Phase is a step of one generation attempt:
//
//	Idle -> Validating -> Composing -> Requesting -> Succeeded | Failed -> Idle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseComposing
	PhaseRequesting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseComposing:
		return "composing"
	case PhaseRequesting:
		return "requesting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}
