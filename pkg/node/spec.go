package node

import "fmt"

// Spec declares a node: its id, type label and sockets.
type Spec struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Inputs  []SocketSpec `json:"inputs"`
	Outputs []SocketSpec `json:"outputs"`
}

// ValidationError describes one problem found in a Spec.
type ValidationError struct {
	Code     string
	Message  string
	SocketID string
}

func (e ValidationError) Error() string {
	if e.SocketID != "" {
		return fmt.Sprintf("%s: %s (socket: %s)", e.Code, e.Message, e.SocketID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validate reports every problem in spec. Socket ids must be unique across
// inputs and outputs so connectors can address them unambiguously.
func Validate(spec Spec) []ValidationError {
	var errs []ValidationError
	if spec.ID == "" {
		errs = append(errs, ValidationError{
			Code:    "MISSING_NODE_ID",
			Message: "node has no id",
		})
	}

	seen := make(map[string]Direction)
	check := func(dir Direction, sockets []SocketSpec) {
		for i, s := range sockets {
			if s.ID == "" {
				errs = append(errs, ValidationError{
					Code:    "MISSING_SOCKET_ID",
					Message: fmt.Sprintf("%s socket %d has no id", dir, i),
				})
				continue
			}
			if s.Label == "" {
				errs = append(errs, ValidationError{
					Code:     "MISSING_SOCKET_LABEL",
					Message:  fmt.Sprintf("%s socket %d has no label", dir, i),
					SocketID: s.ID,
				})
			}
			if prev, dup := seen[s.ID]; dup {
				errs = append(errs, ValidationError{
					Code:     "DUPLICATE_SOCKET_ID",
					Message:  fmt.Sprintf("%s socket %d reuses an id already used by an %s socket", dir, i, prev),
					SocketID: s.ID,
				})
				continue
			}
			seen[s.ID] = dir
		}
	}
	check(In, spec.Inputs)
	check(Out, spec.Outputs)
	return errs
}
