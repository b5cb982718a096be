package gpif

// XMLError reports a GPIF document that could not be parsed: the underlying
// XML is not well-formed or has no root element.
type XMLError struct{ Detail string }

func (e *XMLError) Error() string { return "gpif: " + e.Detail }
