package sqlsel

import (
	"errors"
	"reflect"
	"testing"
)

type (
	B  = testing.B
	T  = testing.T
	TB = testing.TB
)

func eq(t TB, expected interface{}, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected:\n%#v\nactual:\n%#v", expected, actual)
	}
}

func noErr(t TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func errIs(t TB, target error, err error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error matching:\n%v\nactual:\n%v", target, err)
	}
}

func errCode(t TB, code ErrCode, err error) {
	t.Helper()
	var val Err
	if !errors.As(err, &val) {
		t.Fatalf("expected %T with code %q, got %#v", val, code, err)
	}
	eq(t, code, val.Code)
}

func panics(t TB, target error, fun func()) {
	t.Helper()
	defer func() {
		t.Helper()
		val := recover()
		err, _ := val.(error)
		if err == nil {
			t.Fatalf("expected panic with error matching %v, got %#v", target, val)
		}
		errIs(t, target, err)
	}()
	fun()
}
