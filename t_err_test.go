package sqlsel

import (
	"errors"
	"fmt"
	"testing"
)

func TestErr_formatting(t *testing.T) {
	test := func(src Err, exp string) {
		t.Helper()
		eq(t, exp, src.Error())
		eq(t, exp, fmt.Sprintf(`%v`, src))
	}

	test(Err{}, ``)

	test(
		Err{While: `doing some operation`},
		`[sqlsel] error while doing some operation`,
	)

	test(
		Err{Cause: errors.New(`some cause`)},
		`[sqlsel] error: some cause`,
	)

	test(
		Err{
			Code:  ErrCodeOutOfMemory,
			While: `doing some operation`,
			Cause: errors.New(`some cause`),
		},
		`[sqlsel] OutOfMemory while doing some operation: some cause`,
	)

	test(
		ErrArgumentNotFound.while(`adding columns`),
		`[sqlsel] ArgumentNotFound while adding columns: at least one element is required`,
	)

	test(
		errArgument(`binding value`, ErrCapacityExceeded.because(errors.New(`full`))),
		`[sqlsel] Argument while binding value: [sqlsel] CapacityExceeded: full`,
	)
}

func TestErr_Is(t *testing.T) {
	err := ErrOutOfMemory.while(`reserving`).because(errors.New(`other`))
	eq(t, true, errors.Is(err, ErrOutOfMemory))
	eq(t, false, errors.Is(err, ErrArgument))
	eq(t, false, errors.Is(err, Err{}))

	wrapped := fmt.Errorf(`outer: %w`, err)
	eq(t, true, errors.Is(wrapped, ErrOutOfMemory))

	cause := errors.New(`custom`)
	err = errArgument(`binding value`, cause)
	eq(t, true, errors.Is(err, ErrArgument))
	eq(t, true, errors.Is(err, cause))
	eq(t, cause, errors.Unwrap(err))
}
