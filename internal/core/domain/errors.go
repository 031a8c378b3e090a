package domain

import "errors"

var (
	// ErrInvalidIndex is returned when a splice index falls outside 0..len.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrSessionBusy is returned when a draw is started while another one is active.
	ErrSessionBusy = errors.New("session busy")
	// ErrInvalidInsertion is returned when a polygon cannot be spliced into the route.
	ErrInvalidInsertion = errors.New("invalid insertion")
	// ErrInsufficientData is returned when exporting a route with fewer than two elements.
	ErrInsufficientData = errors.New("insufficient data")

	ErrPolygonPending  = errors.New("a polygon is waiting to be imported or discarded")
	ErrStaleHandle     = errors.New("drawing handle is not active")
	ErrMissionNotFound = errors.New("mission not found")
	ErrExportNotFound  = errors.New("export not found")
)
