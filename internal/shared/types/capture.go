package types

// ElementType is the inferred kind of a text-bearing node
type ElementType = string

const (
	ElementPassword      ElementType = "password"
	ElementInput         ElementType = "input"
	ElementButton        ElementType = "button"
	ElementClickableText ElementType = "clickable_text"
	ElementText          ElementType = "text"
	ElementImage         ElementType = "image"
	ElementOther         ElementType = "other"
)

// WindowType classifies the captured window by its class name
type WindowType = string

const (
	WindowActivity WindowType = "activity"
	WindowDialog   WindowType = "dialog"
	WindowMenu     WindowType = "menu"
	WindowOther    WindowType = "other"
)

// TextElement is a single node that contributed text to a capture.
// X and Y are the centre of the node's bounding box.
type TextElement struct {
	Text        string `json:"text" yaml:"text"`
	Type        string `json:"type" yaml:"type"`
	IsClickable bool   `json:"isClickable" yaml:"isClickable"`
	IsEditable  bool   `json:"isEditable" yaml:"isEditable"`
	ClassName   string `json:"className" yaml:"className"`
	Depth       int32  `json:"depth" yaml:"depth"`
	X           int32  `json:"x" yaml:"x"`
	Y           int32  `json:"y" yaml:"y"`
	Width       int32  `json:"width" yaml:"width"`
	Height      int32  `json:"height" yaml:"height"`
}

// ScreenSummary aggregates a TextElement sequence.
// The values of ElementCounts always sum to the sequence length.
type ScreenSummary struct {
	CombinedText     string           `json:"combinedText" yaml:"combinedText"`
	ElementCounts    map[string]int32 `json:"elementCounts" yaml:"elementCounts"`
	HasEmailField    bool             `json:"hasEmailField" yaml:"hasEmailField"`
	HasPasswordField bool             `json:"hasPasswordField" yaml:"hasPasswordField"`
	HasSearchField   bool             `json:"hasSearchField" yaml:"hasSearchField"`
	ClickableCount   int32            `json:"clickableCount" yaml:"clickableCount"`
	EditableCount    int32            `json:"editableCount" yaml:"editableCount"`
}

// TextFocusedData holds the text elements of one screen in depth-first pre-order
type TextFocusedData struct {
	Timestamp     int64         `json:"timestamp" yaml:"timestamp"`
	PackageName   string        `json:"packageName" yaml:"packageName"`
	TextData      []TextElement `json:"textData" yaml:"textData"`
	ScreenSummary ScreenSummary `json:"screenSummary" yaml:"screenSummary"`
}

// CaptureRecord is one snapshot of an observed screen
type CaptureRecord struct {
	Timestamp       int64           `json:"timestamp" yaml:"timestamp"` // Unix milliseconds
	PackageName     string          `json:"packageName" yaml:"packageName"`
	WindowID        int32           `json:"windowId" yaml:"windowId"`
	WindowTitle     string          `json:"windowTitle" yaml:"windowTitle"`
	WindowType      string          `json:"windowType" yaml:"windowType"`
	TextFocusedData TextFocusedData `json:"textFocusedData" yaml:"textFocusedData"`
}
