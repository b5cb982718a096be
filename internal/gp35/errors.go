package gp35

// VersionError reports that the version string inside a GP3/GP5 file did
// not match the decoder it was handed to.
type VersionError struct{ Detail string }

func (e *VersionError) Error() string { return "gp35: unsupported version: " + e.Detail }
