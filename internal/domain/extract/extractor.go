package extract

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

const textDelimiter = " | "

// Extractor walks a UI tree and produces capture records
type Extractor struct {
	logger *zap.Logger
	now    func() time.Time
}

// New creates an extractor
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		logger: logger.Named("extract"),
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract builds a CaptureRecord from the tree rooted at root.
// The root handle is not released.
func (e *Extractor) Extract(root Node) (*types.CaptureRecord, error) {
	if root == nil {
		return nil, fmt.Errorf("extract: nil root")
	}

	info, err := root.Info()
	if err != nil {
		return nil, fmt.Errorf("extract: read root: %w", err)
	}

	elements := make([]types.TextElement, 0, 32)
	if err := collect(root, info, 0, &elements); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	ts := e.now().UnixMilli()
	rec := &types.CaptureRecord{
		Timestamp:   ts,
		PackageName: info.PackageName,
		WindowID:    info.WindowID,
		WindowTitle: info.ClassName,
		WindowType:  WindowType(info.ClassName),
		TextFocusedData: types.TextFocusedData{
			Timestamp:     ts,
			PackageName:   info.PackageName,
			TextData:      elements,
			ScreenSummary: Summarize(elements),
		},
	}

	e.logger.Debug("Extracted capture record",
		zap.String("package", rec.PackageName),
		zap.Int("elements", len(elements)),
	)
	return rec, nil
}

// collect appends the node's element (if it has text) and then walks its children
func collect(n Node, info NodeInfo, depth int32, out *[]types.TextElement) error {
	if text := joinTexts(info); text != "" {
		*out = append(*out, types.TextElement{
			Text:        text,
			Type:        ElementType(info),
			IsClickable: info.Clickable,
			IsEditable:  info.Editable,
			ClassName:   info.ClassName,
			Depth:       depth,
			X:           info.Bounds.CenterX(),
			Y:           info.Bounds.CenterY(),
			Width:       info.Bounds.Width(),
			Height:      info.Bounds.Height(),
		})
	}

	return forEachChild(n, n.ChildCount(), func(child Node) error {
		childInfo, err := child.Info()
		if err != nil {
			return fmt.Errorf("read node at depth %d: %w", depth+1, err)
		}
		return collect(child, childInfo, depth+1, out)
	})
}

// joinTexts combines the non-blank text sources of a node
func joinTexts(info NodeInfo) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{info.Text, info.Description, info.Hint} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, textDelimiter)
}

// ElementType infers the element type of a node
func ElementType(info NodeInfo) string {
	switch {
	case info.Password:
		return types.ElementPassword
	case info.Editable:
		return types.ElementInput
	case strings.Contains(info.ClassName, "Button"):
		return types.ElementButton
	case info.Clickable && info.HasText:
		return types.ElementClickableText
	case strings.Contains(info.ClassName, "TextView"):
		return types.ElementText
	case strings.Contains(info.ClassName, "ImageView"):
		return types.ElementImage
	default:
		return types.ElementOther
	}
}

// WindowType classifies a window by its class name
func WindowType(className string) string {
	switch {
	case strings.Contains(className, "Activity"):
		return types.WindowActivity
	case strings.Contains(className, "Dialog"):
		return types.WindowDialog
	case strings.Contains(className, "Menu"):
		return types.WindowMenu
	default:
		return types.WindowOther
	}
}
