package sqlsel

/*
Finished command: the complete text and the argument collection it was built
with. Has no mutating methods. Obtained only from `End` or `(*Start).Values`.

	cmd := start.End()
	rows, err := conn.Query(ctx, cmd.String(), cmd.Args().Values()...)
*/
type Command[A Args] struct {
	text []byte
	args A
}

// Implement `fmt.Stringer`. Returns the command text. Rendering doesn't
// modify anything; repeated calls return the same text.
func (self *Command[A]) String() string {
	if self == nil {
		return ``
	}
	return bytesToMutableString(self.text)
}

// Implement the `Appender` interface, appending the command text.
func (self *Command[A]) Append(buf []byte) []byte {
	if self == nil {
		return buf
	}
	return append(buf, self.text...)
}

// Returns the argument collection, as passed to `Select` and filled by the
// chain.
func (self *Command[A]) Args() A {
	if self == nil {
		var zero A
		return zero
	}
	return self.args
}

/*
Shortcut for `self.String(), self.Args().Values()`. Go database drivers tend to
require `string, []any` as inputs for queries and statements. If the
collection doesn't implement `ArgLister`, the returned args are nil.
*/
func (self *Command[A]) Reify() (string, []any) {
	lister, _ := any(self.Args()).(ArgLister)
	if lister == nil {
		return self.String(), nil
	}
	return self.String(), lister.Values()
}

/*
Appends a text repesentation. Sometimes allows better efficiency than
`fmt.Stringer`. Implemented by `Command`.
*/
type Appender interface {
	Append([]byte) []byte
}

var _ = Appender((*Command[*List])(nil))
