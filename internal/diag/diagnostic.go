package diag

// NoPosition marks an unknown line or column.
const NoPosition = -1

// Diagnostic is a normalized compiler message.
//
// Location is a URL ("file:///abs/Foo.groovy") or a module description; an
// empty string means the message carries no location at all.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location string
	Line     int
	Column   int
}

// HasLocation reports whether the diagnostic points somewhere.
func (d Diagnostic) HasLocation() bool {
	return d.Location != ""
}

// HasPosition reports whether both line and column are known.
func (d Diagnostic) HasPosition() bool {
	return d.Line != NoPosition && d.Column != NoPosition
}
