package dnd

// Signals dispatched on the dragged element. All bubble and carry the
// *Draggable as Event.Detail.
const (
	EventStarted   = "drag-started"
	EventDragging  = "drag-dragging"
	EventCompleted = "drag-completed"
	EventCanceled  = "drag-canceled"
)

// Cursor values applied during interaction.
const (
	CursorGrab     = "grab"
	CursorGrabbing = "grabbing"
)
