package sqlsel

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitranim/refut"
)

/*
Takes a struct and generates a static column list from the "db" tags of its
fields. Also accepts the following inputs and automatically dereferences them
into a struct type:

	* Struct pointer.
	* Struct slice.
	* Struct slice pointer.

Nil slices and pointers are fine, as long as they carry a struct type. Column
names are double-quoted. Fields of nested struct types are selected through
their parent and aliased with a dot-separated path:

	type Internal struct {
		Id   string `db:"id"`
		Name string `db:"name"`
	}

	type External struct {
		Id       string   `db:"id"`
		Internal Internal `db:"internal"`
	}

	// "id", ("internal")."id" AS "internal.id", ("internal")."name" AS "internal.name"
	sqlsel.StructColumns(External{})
*/
func StructColumns(dest any) (Columns, error) {
	const while = `generating struct columns`
	if dest == nil {
		return Columns{}, ErrInvalidInput.while(while).because(fmt.Errorf(`expected struct, got nil`))
	}

	rtype := refut.RtypeDeref(reflect.TypeOf(dest))
	if rtype.Kind() == reflect.Slice {
		rtype = refut.RtypeDeref(rtype.Elem())
	}

	if rtype.Kind() != reflect.Struct {
		return Columns{}, ErrInvalidInput.while(while).because(fmt.Errorf(`expected struct, got %q`, rtype))
	}

	idents, err := structIdents(rtype)
	if err != nil {
		return Columns{}, ErrInvalidInput.while(while).because(err)
	}

	var buf strings.Builder
	sqlIdent{idents: idents}.appendSelect(&buf, nil)

	text, err := fragment(while, buf.String())
	return Columns{text}, err
}

// Variant of `StructColumns` that panics on error.
func TryStructColumns(dest any) Columns { return try1(StructColumns(dest)) }

func structIdents(rtype reflect.Type) ([]sqlIdent, error) {
	var idents []sqlIdent

	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		name := refut.TagIdent(sfield.Tag.Get(`db`))
		if name == `` {
			return nil
		}

		ftype := refut.RtypeDeref(sfield.Type)
		if ftype.Kind() == reflect.Struct && !isScannableRtype(ftype) {
			inner, err := structIdents(ftype)
			if err != nil {
				return err
			}
			idents = append(idents, sqlIdent{name: name, idents: inner})
			return nil
		}

		idents = append(idents, sqlIdent{name: name})
		return nil
	})
	return idents, err
}

var (
	timeRtype       = reflect.TypeOf(time.Time{})
	sqlScannerRtype = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

// Types such as `time.Time` or `sql.NullString` are single columns even though
// they're structs.
func isScannableRtype(rtype reflect.Type) bool {
	return rtype != nil &&
		(rtype == timeRtype || reflect.PtrTo(rtype).Implements(sqlScannerRtype))
}

type sqlIdent struct {
	name   string
	idents []sqlIdent
}

func (self sqlIdent) appendSelect(buf *strings.Builder, path []sqlIdent) {
	/**
	If the ident doesn't have a name, it's just a collection of other idents,
	which are considered to be at the "top level". If the ident has a name, it's
	considered to "contain" the other idents.
	*/
	if len(self.idents) > 0 {
		if self.name != `` {
			path = append(path, self)
		}
		for _, ident := range self.idents {
			ident.appendSelect(buf, path)
		}
		return
	}

	if self.name == `` {
		return
	}

	if buf.Len() > 0 {
		buf.WriteString(sepComma)
	}

	if len(path) > 0 {
		self.appendPath(buf, path)
		buf.WriteString(sepAs)
	}
	self.appendAlias(buf, path)
}

func (self sqlIdent) appendPath(buf *strings.Builder, path []sqlIdent) {
	for ind, ident := range path {
		if ind == 0 {
			buf.WriteString(`("` + ident.name + `")`)
		} else {
			buf.WriteString(`"` + ident.name + `"`)
		}
		buf.WriteString(`.`)
	}
	buf.WriteString(`"` + self.name + `"`)
}

func (self sqlIdent) appendAlias(buf *strings.Builder, path []sqlIdent) {
	buf.WriteString(`"`)
	for _, ident := range path {
		buf.WriteString(ident.name)
		buf.WriteString(`.`)
	}
	buf.WriteString(self.name)
	buf.WriteString(`"`)
}
