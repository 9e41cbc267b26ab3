package sqlsel

import (
	"database/sql/driver"
	"fmt"
)

/*
Ordered collection of bound arguments accompanying the command text. The
builder calls `.Push` once per bound value and immediately writes the ordinal
parameter `$<Count()>` into the text, so implementations must satisfy:

	* After N successful pushes, `.Count()` returns N.
	* `.Count()` never decreases.
	* A failed push doesn't change `.Count()`.

Errors returned by `.Push` are reported by the builder under
`ErrCodeArgument`, with the original error as the cause. This package provides
`List`, `Array`, `Nop` and `DriverArgs`.
*/
type Args interface {
	Push(any) error
	Count() int
}

/*
Optional extension of `Args` that exposes the collected values in order. Used
by `Command.Reify` and by hand-off adapters such as "relsel".
*/
type ArgLister interface {
	Args
	Values() []any
}

var (
	_ = ArgLister((*List)(nil))
	_ = ArgLister((*Array)(nil))
	_ = ArgLister(Nop{})
	_ = ArgLister((*DriverArgs)(nil))
)

// Unbounded argument collection backed by a slice.
type List []any

// Implement `Args`. Fails only on a nil pointer, with `ErrNilCollection`.
func (self *List) Push(val any) error {
	if self == nil {
		return ErrNilCollection.while(`pushing to list`)
	}
	*self = append(*self, val)
	return nil
}

// Implement `Args`.
func (self *List) Count() int {
	if self == nil {
		return 0
	}
	return len(*self)
}

// Implement `ArgLister`.
func (self *List) Values() []any {
	if self == nil {
		return nil
	}
	return *self
}

/*
Fixed-capacity argument collection. Never reallocates: once full, every push
fails with `ErrCapacityExceeded`. Use `MakeArray` to create one.
*/
type Array struct{ vals []any }

// Makes an `Array` that accepts up to `size` values.
func MakeArray(size int) *Array {
	if size < 0 {
		size = 0
	}
	return &Array{make([]any, 0, size)}
}

// Implement `Args`.
func (self *Array) Push(val any) error {
	if self == nil {
		return ErrNilCollection.while(`pushing to array`)
	}
	if len(self.vals) >= cap(self.vals) {
		return ErrCapacityExceeded.while(`pushing to array`).because(
			fmt.Errorf(`array of capacity %d is full`, cap(self.vals)),
		)
	}
	self.vals = append(self.vals, val)
	return nil
}

// Implement `Args`.
func (self *Array) Count() int {
	if self == nil {
		return 0
	}
	return len(self.vals)
}

// Implement `ArgLister`.
func (self *Array) Values() []any {
	if self == nil {
		return nil
	}
	return self.vals
}

// Maximum amount of values this array accepts.
func (self *Array) Cap() int {
	if self == nil {
		return 0
	}
	return cap(self.vals)
}

/*
Argument collection for literal-only queries, which bind no values. Every push
fails with `ErrUnexpectedArgument`.
*/
type Nop struct{}

// Implement `Args`. Always fails.
func (Nop) Push(val any) error {
	return ErrUnexpectedArgument.while(`pushing to nop collection`).because(
		fmt.Errorf(`unexpected argument %#v`, val),
	)
}

// Implement `Args`. Always zero.
func (Nop) Count() int { return 0 }

// Implement `ArgLister`. Always nil.
func (Nop) Values() []any { return nil }

/*
Argument collection that normalizes every value into a `driver.Value` at push
time, so that values unsupported by the eventual driver are rejected while the
command is built rather than when it's executed. Uses `.Conv` when set and
`driver.DefaultParameterConverter` otherwise. Values that fail conversion are
not stored, and the push fails with `ErrUnsupportedValue`.
*/
type DriverArgs struct {
	Conv driver.ValueConverter
	Vals []driver.Value
}

// Implement `Args`.
func (self *DriverArgs) Push(val any) error {
	if self == nil {
		return ErrNilCollection.while(`pushing to driver args`)
	}

	conv := self.Conv
	if conv == nil {
		conv = driver.DefaultParameterConverter
	}

	out, err := conv.ConvertValue(val)
	if err != nil {
		return ErrUnsupportedValue.while(`converting argument to driver value`).because(err)
	}
	self.Vals = append(self.Vals, out)
	return nil
}

// Implement `Args`.
func (self *DriverArgs) Count() int {
	if self == nil {
		return 0
	}
	return len(self.Vals)
}

// Implement `ArgLister`.
func (self *DriverArgs) Values() []any {
	if self == nil || self.Vals == nil {
		return nil
	}
	out := make([]any, len(self.Vals))
	for ind, val := range self.Vals {
		out[ind] = val
	}
	return out
}
