package diag

func New(sev Severity, msg, location string, line, column int) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Message:  msg,
		Location: location,
		Line:     line,
		Column:   column,
	}
}

// NewError builds an error without location.
func NewError(msg string) Diagnostic {
	return New(SevError, msg, "", NoPosition, NoPosition)
}

// NewWarning builds a warning without location.
func NewWarning(msg string) Diagnostic {
	return New(SevWarning, msg, "", NoPosition, NoPosition)
}

// NewInfo builds an informational diagnostic without location.
func NewInfo(msg string) Diagnostic {
	return New(SevInfo, msg, "", NoPosition, NoPosition)
}
