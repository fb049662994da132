package core

import (
	"errors"
	"log"
)

var (
	ErrNilWidget        = errors.New("widget is nil")
	ErrMissingOverlay   = errors.New("widget reports no text metrics")
	ErrMissingViewport  = errors.New("widget reports no viewport")
	ErrNothingSelected  = errors.New("nothing selected")
	ErrNoClipboard      = errors.New("clipboard handler not set")
	ErrEmptyClipboard   = errors.New("clipboard is empty")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrControllerClosed = errors.New("controller is disposed")
)

// logToolError is the default tool action error handler. Tool failures are
// diagnostic, not fatal: the menu stays as it was so the user can retry.
func logToolError(name ToolName, err error) {
	log.Printf("touchselect: tool %q failed: %v", name, err)
}
