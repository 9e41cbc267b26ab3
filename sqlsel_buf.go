package sqlsel

import (
	"fmt"
	"math"

	"github.com/mitranim/sqlp"
)

/*
Upper bound, in bytes, for the text of commands started by `Select`,
`SelectAll` and `SelectDistinct`. Zero or negative means no limit other than
what the runtime can allocate. Can be overridden per chain via `(*Start).Limit`.
*/
var DefaultTextLimit = 1 << 20

/*
Append-only text buffer with explicit, fallible growth. Callers must `Reserve`
the exact amount of bytes they are about to append; appending methods never
check anything and assume that the reservation succeeded.
*/
type Buf struct {
	Text  []byte
	Limit int
}

// Returns inner text as a string, performing a free cast.
func (self Buf) String() string { return bytesToMutableString(self.Text) }

// Length of the text, in bytes.
func (self Buf) Len() int { return len(self.Text) }

/*
Ensures capacity for `size` more bytes. Fails with `ErrOutOfMemory` if the
resulting length would exceed `.Limit`, overflow `int`, or if the runtime
refuses the allocation. On failure the text is untouched.
*/
func (self *Buf) Reserve(size int) (err error) {
	if size < 0 {
		return ErrInvalidInput.while(`reserving text buffer`).because(
			fmt.Errorf(`negative reservation size %d`, size),
		)
	}

	prev := len(self.Text)
	if size > math.MaxInt-prev {
		return ErrOutOfMemory.while(`reserving text buffer`).because(
			fmt.Errorf(`length %d + %d overflows int`, prev, size),
		)
	}

	if self.Limit > 0 && prev+size > self.Limit {
		return ErrOutOfMemory.while(`reserving text buffer`).because(
			fmt.Errorf(`length %d + %d exceeds limit %d`, prev, size, self.Limit),
		)
	}

	defer recOom(&err)
	self.Text = growBytes(self.Text, size, self.Limit)
	return nil
}

// Appends the string as-is.
func (self *Buf) Str(val string) { self.Text = append(self.Text, val...) }

// Appends an ordinal parameter such as "$1".
func (self *Buf) Ord(val int) {
	ord := sqlp.NodeOrdinalParam(val)
	ord.Append(&self.Text)
}

// Byte length of the ordinal parameter `$<val>`.
func ordLen(val int) int {
	size := 2
	for val >= 10 {
		val /= 10
		size++
	}
	return size
}

/*
Like the usual doubling, but a positive limit caps the new capacity, so a
limited buffer never allocates past its limit.
*/
func growBytes(prev []byte, size, limit int) []byte {
	len, cap := len(prev), cap(prev)
	if cap-len >= size {
		return prev
	}

	next := make([]byte, len, growCap(cap, len+size, limit))
	copy(next, prev)
	return next
}

func growCap(prev, min, limit int) int {
	next := min
	if prev <= math.MaxInt/2 && 2*prev > min {
		next = 2 * prev
	}
	if limit > 0 && next > limit && min <= limit {
		next = limit
	}
	return next
}

// Must be deferred. Converts allocation panics into `ErrOutOfMemory`.
func recOom(ptr *error) {
	val := recover()
	if val == nil {
		return
	}

	err, _ := val.(error)
	if err != nil {
		*ptr = ErrOutOfMemory.while(`growing text buffer`).because(err)
		return
	}

	panic(val)
}
