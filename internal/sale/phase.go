package sale

// Phase is the sale lifecycle stage reported by the contract.
type Phase int

// The zero Phase is PhaseUnknown so an empty Snapshot never claims a stage.
const (
	PhaseUnknown Phase = iota
	PhaseBeforeStart
	PhaseRunning
	PhaseAfterEnd
	PhaseHalted
	PhaseError // the phase query itself failed
)

// PhaseFromCode maps the contract's State enum to a Phase. Codes outside
// 0..3 map to PhaseUnknown.
func PhaseFromCode(code int64) Phase {
	switch code {
	case 0:
		return PhaseBeforeStart
	case 1:
		return PhaseRunning
	case 2:
		return PhaseAfterEnd
	case 3:
		return PhaseHalted
	default:
		return PhaseUnknown
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseBeforeStart:
		return "Before Start"
	case PhaseRunning:
		return "Running"
	case PhaseAfterEnd:
		return "After End"
	case PhaseHalted:
		return "Halted"
	case PhaseError:
		return "Error"
	case PhaseUnknown:
		return "Unknown State"
	}
	return "Unknown State"
}

// Open reports whether the contract is currently accepting investments.
// The contract remains the authority; this only drives hints in the UI.
func (p Phase) Open() bool {
	return p == PhaseRunning
}
