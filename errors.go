package sqlsel

import (
	"errors"
	"fmt"
)

/*
Error codes. You probably shouldn't use this directly; instead, use the `Err`
variables with `errors.Is`.
*/
type ErrCode string

const (
	ErrCodeUnknown            ErrCode = ""
	ErrCodeOutOfMemory        ErrCode = "OutOfMemory"
	ErrCodeArgumentNotFound   ErrCode = "ArgumentNotFound"
	ErrCodeArgument           ErrCode = "Argument"
	ErrCodeConsumedStage      ErrCode = "ConsumedStage"
	ErrCodeInvalidFragment    ErrCode = "InvalidFragment"
	ErrCodeInvalidInput       ErrCode = "InvalidInput"
	ErrCodeCapacityExceeded   ErrCode = "CapacityExceeded"
	ErrCodeUnexpectedArgument ErrCode = "UnexpectedArgument"
	ErrCodeUnsupportedValue   ErrCode = "UnsupportedValue"
	ErrCodeNilCollection      ErrCode = "NilCollection"
	ErrCodeInternal           ErrCode = "Internal"
)

/*
Use blank error variables to detect error types:

	if errors.Is(err, sqlsel.ErrOutOfMemory) {
		// Retry with a smaller payload, or give up.
	}

Note that errors returned by this package can't be compared via `==` because
they may include additional details about the circumstances. When compared by
`errors.Is`, they compare `.Cause` and fall back on `.Code`.

Errors returned by an argument collection are never replaced. The builder
reports them with `ErrCodeArgument`, keeping the original error as `.Cause`,
so both of these work:

	errors.Is(err, sqlsel.ErrArgument)
	errors.As(err, &someCollectionSpecificError)

Because `errors.Is` also matches the cause, a collection that returns one of
the builder's own kinds, such as `ErrOutOfMemory`, matches that kind too.
Check `ErrArgument` first to tell a rejected push apart from a failure of the
builder itself. Collections in this package report their own kinds:
`ErrCapacityExceeded`, `ErrUnexpectedArgument`, `ErrUnsupportedValue` and
`ErrNilCollection`, none of which the builder returns directly.
*/
var (
	ErrOutOfMemory        Err = Err{Code: ErrCodeOutOfMemory, Cause: errors.New(`text buffer reservation failed`)}
	ErrArgumentNotFound   Err = Err{Code: ErrCodeArgumentNotFound, Cause: errors.New(`at least one element is required`)}
	ErrArgument           Err = Err{Code: ErrCodeArgument, Cause: errors.New(`argument collection rejected value`)}
	ErrConsumedStage      Err = Err{Code: ErrCodeConsumedStage, Cause: errors.New(`builder stage was already consumed`)}
	ErrInvalidFragment    Err = Err{Code: ErrCodeInvalidFragment, Cause: errors.New(`invalid static fragment`)}
	ErrInvalidInput       Err = Err{Code: ErrCodeInvalidInput, Cause: errors.New(`invalid input`)}
	ErrCapacityExceeded   Err = Err{Code: ErrCodeCapacityExceeded, Cause: errors.New(`argument capacity exceeded`)}
	ErrUnexpectedArgument Err = Err{Code: ErrCodeUnexpectedArgument, Cause: errors.New(`collection does not accept arguments`)}
	ErrUnsupportedValue   Err = Err{Code: ErrCodeUnsupportedValue, Cause: errors.New(`value can't be converted for the driver`)}
	ErrNilCollection      Err = Err{Code: ErrCodeNilCollection, Cause: errors.New(`argument collection is nil`)}
	ErrInternal           Err = Err{Code: ErrCodeInternal, Cause: errors.New(`internal error`)}
)

// Type of errors returned by this package.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

// Implement `error`.
func (self Err) Error() string {
	if self.Code == ErrCodeUnknown && self.While == `` && self.Cause == nil {
		return ``
	}
	msg := `[sqlsel]`
	if self.Code != ErrCodeUnknown {
		msg += fmt.Sprintf(` %s`, self.Code)
	} else {
		msg += ` error`
	}
	if self.While != `` {
		msg += fmt.Sprintf(` while %v`, self.While)
	}
	if self.Cause != nil {
		msg += `: ` + self.Cause.Error()
	}
	return msg
}

// Implement a hidden interface in "errors".
func (self Err) Is(other error) bool {
	if self.Cause != nil && errors.Is(self.Cause, other) {
		return true
	}
	err, ok := other.(Err)
	return ok && err.Code != ErrCodeUnknown && err.Code == self.Code
}

// Implement a hidden interface in "errors".
func (self Err) Unwrap() error {
	return self.Cause
}

func (self Err) while(while string) Err {
	self.While = while
	return self
}

func (self Err) because(cause error) Err {
	self.Cause = cause
	return self
}

func errArgument(while string, cause error) Err {
	return ErrArgument.while(while).because(cause)
}
