package chanselect

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

// ErrInvalidChannel is returned for a (depth, ieta, iphi) triple which is
// not part of the enumerated geometry.
type ErrInvalidChannel struct {
	Depth int
	Ieta  int
	Iphi  int
}

func (e *ErrInvalidChannel) Error() string {
	return fmt.Sprintf("invalid channel triple: depth %d, ieta %d, iphi %d", e.Depth, e.Ieta, e.Iphi)
}

// ErrIndexOutOfRange is returned when a linear channel, module or rack
// index exceeds the size of the corresponding table.
type ErrIndexOutOfRange struct {
	What  string
	Index int
	Count int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.What, e.Index, e.Count)
}

// ErrInvalidWindow is returned for energy extraction bounds which do not
// satisfy start < end <= number of samples.
type ErrInvalidWindow struct {
	Start    int
	End      int
	NSamples int
}

func (e *ErrInvalidWindow) Error() string {
	return fmt.Sprintf("invalid time slice window [%d, %d) for %d samples", e.Start, e.End, e.NSamples)
}

// ErrMissingGeometryEntry is returned when a channel received no direction
// from the geometry description.
type ErrMissingGeometryEntry struct {
	Channel ChannelID
}

func (e *ErrMissingGeometryEntry) Error() string {
	return fmt.Sprintf("no geometry data for ieta %d, iphi %d, depth %d",
		e.Channel.Ieta, e.Channel.Iphi, e.Channel.Depth)
}

// ErrUnsupportedConfiguration is returned for unknown option values, such
// as the name of a channel selector or of a cone metric.
type ErrUnsupportedConfiguration struct {
	Option string
	Value  string
}

func (e *ErrUnsupportedConfiguration) Error() string {
	return fmt.Sprintf("unsupported value %q for option %s", e.Value, e.Option)
}

// ErrDuplicateChannel is returned when the same channel shows up twice in
// an event or in a geometry table.
type ErrDuplicateChannel struct {
	Channel ChannelID
}

func (e *ErrDuplicateChannel) Error() string {
	return fmt.Sprintf("channel %v appears more than once", e.Channel)
}

// ErrParseTable represents a malformed row in a text table.
type ErrParseTable struct {
	Source string
	Line   int
	Err    error
}

func (e *ErrParseTable) Error() string {
	return fmt.Sprintf("error parsing %s, line %d: %v", e.Source, e.Line, e.Err)
}

func (e *ErrParseTable) Unwrap() error { return e.Err }
