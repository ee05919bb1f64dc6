package engine

import "fmt"

// DocumentID identifies a document loaded into an engine. Zero is invalid.
type DocumentID uint32

// FormID identifies a registered form-fill environment. Zero is invalid.
type FormID uint32

// PageID identifies a loaded page. Zero is invalid.
type PageID uint32

func (id DocumentID) String() string { return fmt.Sprintf("doc:%d", uint32(id)) }
func (id FormID) String() string     { return fmt.Sprintf("form:%d", uint32(id)) }
func (id PageID) String() string     { return fmt.Sprintf("page:%d", uint32(id)) }

// SaveFlags selects the serializer mode.
type SaveFlags uint32

const (
	// SaveIncremental appends pending changes after the original bytes.
	SaveIncremental SaveFlags = 1
	// SaveNoIncremental rewrites the whole document, consolidating any
	// pending incremental state.
	SaveNoIncremental SaveFlags = 2
	// SaveRemoveSecurity drops the encryption dictionary.
	SaveRemoveSecurity SaveFlags = 3
)

func (f SaveFlags) String() string {
	switch f {
	case SaveIncremental:
		return "incremental"
	case SaveNoIncremental:
		return "no-incremental"
	case SaveRemoveSecurity:
		return "remove-security"
	default:
		return fmt.Sprintf("flags(%d)", uint32(f))
	}
}

// ErrorCode is the engine's last-error value.
type ErrorCode uint32

const (
	CodeSuccess ErrorCode = iota
	CodeUnknown
	CodeFile
	CodeFormat
	CodePassword
	CodeSecurity
	CodePage
)

func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeUnknown:
		return "unknown error"
	case CodeFile:
		return "file not found or could not be opened"
	case CodeFormat:
		return "file not in PDF format or corrupted"
	case CodePassword:
		return "password required or incorrect"
	case CodeSecurity:
		return "unsupported security scheme"
	case CodePage:
		return "page not found or content error"
	default:
		return fmt.Sprintf("error code %d", uint32(c))
	}
}

// Rect is a page-space rectangle in points.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Cursor is the pointer shape requested by the form subsystem.
type Cursor int

const (
	CursorArrow Cursor = iota
	CursorNESW
	CursorNWSE
	CursorVBeam
	CursorHBeam
	CursorHand
)

func (c Cursor) String() string {
	switch c {
	case CursorArrow:
		return "arrow"
	case CursorNESW:
		return "nesw"
	case CursorNWSE:
		return "nwse"
	case CursorVBeam:
		return "vbeam"
	case CursorHBeam:
		return "hbeam"
	case CursorHand:
		return "hand"
	default:
		return fmt.Sprintf("cursor(%d)", int(c))
	}
}

// ZoomMode is the destination view mode of a go-to action.
type ZoomMode int

const (
	ZoomUnknown ZoomMode = iota
	ZoomXYZ
	ZoomFit
	ZoomFitH
	ZoomFitV
	ZoomFitR
	ZoomFitB
	ZoomFitBH
	ZoomFitBV
)

var zoomNames = [...]string{"unknown", "xyz", "fit", "fith", "fitv", "fitr", "fitb", "fitbh", "fitbv"}

func (z ZoomMode) String() string {
	if z >= 0 && int(z) < len(zoomNames) {
		return zoomNames[z]
	}
	return fmt.Sprintf("zoom(%d)", int(z))
}

// FieldFailure is the Value of the engine error a field edit fails with.
type FieldFailure int

const (
	FieldCantFocusAnnot FieldFailure = iota + 1
	FieldCantSelectText
	FieldCantSelectOption
	FieldCantCheckField
)

func (f FieldFailure) String() string {
	switch f {
	case FieldCantFocusAnnot:
		return "failed to set focused annotation"
	case FieldCantSelectText:
		return "failed to select all text"
	case FieldCantSelectOption:
		return "failed to set index selected"
	case FieldCantCheckField:
		return "failed to set field checked"
	default:
		return fmt.Sprintf("field failure(%d)", int(f))
	}
}

// KeyReturn is the character code that toggles a focused check box or
// radio button.
const KeyReturn = 0x0d
