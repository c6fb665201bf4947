package xutil

import "image"

// An ID names a server-side resource: a window, font or graphics context.
type ID uint32

// ScreenInfo describes the default screen of a server.
type ScreenInfo struct {
	Root       ID
	BlackPixel uint32
	WhitePixel uint32
	Depth      int
	Width      int
	Height     int
}

// WindowAttrs are the attributes set on a newly created window.
type WindowAttrs struct {
	Background       uint32
	OverrideRedirect bool
	EventMask        EventMask
	BackingStore     bool // backing-store Always
}

// An EventMask selects the events a window reports.
// The values are those of the X core protocol.
type EventMask uint32

const (
	KeyPressMask        EventMask = 1 << 0
	KeyReleaseMask      EventMask = 1 << 1
	ButtonPressMask     EventMask = 1 << 2
	ButtonReleaseMask   EventMask = 1 << 3
	PointerMotionMask   EventMask = 1 << 6
	ExposureMask        EventMask = 1 << 15
	StructureNotifyMask EventMask = 1 << 17
)

// A Server carries the protocol requests used by this package.
// Implementations block until the server has accepted or failed each
// request; none of them is safe for concurrent use unless it says so.
type Server interface {
	// Screen returns the default screen.
	Screen() ScreenInfo

	// CreateWindow creates an unmapped child of the root window
	// covering r.
	CreateWindow(r image.Rectangle, a WindowAttrs) (ID, error)
	MapWindow(w ID) error
	DestroyWindow(w ID) error

	// Geometry returns the current position and size of w.
	Geometry(w ID) (image.Rectangle, error)

	// ClearArea paints r, in window coordinates, with the window background.
	ClearArea(w ID, r image.Rectangle) error

	OpenFont(name string) (ID, error)
	CloseFont(f ID) error

	// AllocNamedColor allocates name in the default colormap and
	// returns its pixel value, 0xRRGGBB on a TrueColor screen.
	AllocNamedColor(name string) (uint32, error)

	// CreateGC creates a graphics context for drawable using font
	// and the given foreground and background pixels.
	CreateGC(drawable, font ID, fg, bg uint32) (ID, error)
	FreeGC(gc ID) error

	// FillRectangle fills r with the foreground of gc.
	FillRectangle(drawable, gc ID, r image.Rectangle) error

	// PolyText8 draws items, a sequence of TEXTITEM8 records, with
	// the left edge of the first glyph at p.X and its baseline at p.Y.
	PolyText8(drawable, gc ID, p image.Point, items []byte) error

	// Sync makes a round trip, returning once every earlier request
	// has been processed.
	Sync() error

	Close() error
}
