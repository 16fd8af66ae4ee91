package membership

import (
	"club-la-victoria/internal/common/errors"
)

// Outcome is the terminal result of one verification.
type Outcome string

const (
	OutcomeValid          Outcome = "valid"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeNetworkFailure Outcome = "network_failure"
)

// Shape names the payload form the endpoint answered with.
type Shape string

const (
	ShapeBoolTrue     Shape = "bool-true"
	ShapeStringTrue   Shape = "string-true"
	ShapeObjectFlag   Shape = "object-flag"
	ShapeNegative     Shape = "negative"
	ShapeUnrecognized Shape = "unrecognized"
	ShapeMalformed    Shape = "malformed"
	ShapeNotFound     Shape = "not-found"
	ShapeCached       Shape = "cached"
	ShapeNone         Shape = ""
)

// Positive reports whether the shape confirms membership.
func (s Shape) Positive() bool {
	return s == ShapeBoolTrue || s == ShapeStringTrue || s == ShapeObjectFlag
}

const (
	MsgNotFound       = "DNI no encontrado. Por favor verifica el número ingresado."
	MsgNetworkFailure = "No se pudo conectar con el servidor"
)

// Result is produced once per submission and never persisted, except for
// the optional outcome cache.
type Result struct {
	ID      string  `json:"id"`
	Outcome Outcome `json:"outcome"`
	Shape   Shape   `json:"shape,omitempty"`
	Message string  `json:"message,omitempty"`
	Cached  bool    `json:"cached,omitempty"`

	// Err is set for Invalid and NetworkFailure.
	Err *errors.StandardError `json:"-"`
}

func (r *Result) IsValid() bool {
	return r != nil && r.Outcome == OutcomeValid
}

// Error returns Err as an error, or nil on Valid.
func (r *Result) Error() error {
	if r == nil || r.Err == nil {
		return nil
	}
	return r.Err
}

func validResult(id string, shape Shape) *Result {
	return &Result{ID: id, Outcome: OutcomeValid, Shape: shape}
}

func invalidResult(id string, shape Shape) *Result {
	return &Result{
		ID:      id,
		Outcome: OutcomeInvalid,
		Shape:   shape,
		Message: MsgNotFound,
		Err:     errors.NewMembershipNotFoundError(MsgNotFound, "shape: "+string(shape)),
	}
}

func networkFailure(id string, shape Shape, err *errors.StandardError) *Result {
	return &Result{
		ID:      id,
		Outcome: OutcomeNetworkFailure,
		Shape:   shape,
		Message: MsgNetworkFailure,
		Err:     err,
	}
}
