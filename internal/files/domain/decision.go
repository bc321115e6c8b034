package domain

// Decision is the outcome of an access check for one bucket.
type Decision int

const (
	DecisionDenied Decision = iota
	DecisionGrantedByToken
	DecisionGrantedByOwnership
)

func (d Decision) Granted() bool { return d != DecisionDenied }

func (d Decision) String() string {
	switch d {
	case DecisionGrantedByToken:
		return "token"
	case DecisionGrantedByOwnership:
		return "permission"
	default:
		return "denied"
	}
}

// ParseDecision is the inverse of Decision.String.
func ParseDecision(s string) Decision {
	switch s {
	case "token":
		return DecisionGrantedByToken
	case "permission":
		return DecisionGrantedByOwnership
	default:
		return DecisionDenied
	}
}
