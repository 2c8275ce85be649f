package coinselect

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds indicates the candidate UTXOs cannot cover the target.
	// Every *InsufficientFundsError matches it with errors.Is.
	ErrInsufficientFunds = errors.New("coinselect: insufficient funds")

	// ErrInvalidRequest indicates a zero target or inconsistent request fields.
	ErrInvalidRequest = errors.New("coinselect: invalid request")
)

// Kind names the asset that ran short.
type Kind string

const (
	KindToken Kind = "token"
	KindXEC   Kind = "xec"
)

// InsufficientFundsError reports which asset ran short and by how much.
type InsufficientFundsError struct {
	Kind Kind
	Need uint64
	Have uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("coinselect: insufficient %s funds: need %d, have %d", e.Kind, e.Need, e.Have)
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// KindOf returns the asset kind of an insufficient-funds error, if err is one.
func KindOf(err error) (Kind, bool) {
	var ife *InsufficientFundsError
	if errors.As(err, &ife) {
		return ife.Kind, true
	}
	return "", false
}
