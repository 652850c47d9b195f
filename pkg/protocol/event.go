package protocol

import (
	"errors"
	"fmt"
)

// EventType identifies the type of client event.
type EventType uint8

const (
	// Pointer events (0x03-0x07)
	EventMouseDown EventType = 0x03
	EventMouseUp   EventType = 0x04
	EventMouseMove EventType = 0x05
	EventMouseOver EventType = 0x06
	EventMouseOut  EventType = 0x07

	// Viewport events (0x30-0x31)
	EventScroll EventType = 0x30
	EventResize EventType = 0x31
)

// String returns the DOM name of the event type.
func (et EventType) String() string {
	switch et {
	case EventMouseDown:
		return "mousedown"
	case EventMouseUp:
		return "mouseup"
	case EventMouseMove:
		return "mousemove"
	case EventMouseOver:
		return "mouseover"
	case EventMouseOut:
		return "mouseout"
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(et))
	}
}

// IsPointer reports whether events of this type carry a PointerPayload.
func (et EventType) IsPointer() bool {
	return et >= EventMouseDown && et <= EventMouseOut
}

// Modifier keys held during a pointer event.
type Modifiers uint8

const (
	ModCtrl  Modifiers = 0x01
	ModShift Modifiers = 0x02
	ModAlt   Modifiers = 0x04
	ModMeta  Modifiers = 0x08
)

// Has reports whether m includes mod.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// PointerPayload is the payload of mouse events.
type PointerPayload struct {
	PageX     int64
	PageY     int64
	Button    uint8 // MouseEvent.button: 0 primary, 1 auxiliary, 2 secondary
	Buttons   uint8 // MouseEvent.buttons bitmask
	Modifiers Modifiers
}

// ViewportPayload is the payload of scroll and resize events: the new
// scroll offset or viewport size.
type ViewportPayload struct {
	X int64
	Y int64
}

// Event is a client event. Target is the id of the element the browser
// dispatched on; it is empty for events on the document.
type Event struct {
	Seq      uint64
	Type     EventType
	Target   string
	Pointer  *PointerPayload
	Viewport *ViewportPayload
}

// Event errors.
var (
	ErrUnknownEventType = errors.New("protocol: unknown event type")
	ErrMissingPayload   = errors.New("protocol: event payload missing")
)

// EncodeEvent encodes an Event to bytes.
func EncodeEvent(ev *Event) ([]byte, error) {
	e := NewEncoder()
	if err := EncodeEventTo(e, ev); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// EncodeEventTo encodes an Event using the provided encoder.
func EncodeEventTo(e *Encoder, ev *Event) error {
	e.WriteUvarint(ev.Seq)
	e.WriteByte(byte(ev.Type))
	e.WriteString(ev.Target)

	switch {
	case ev.Type.IsPointer():
		if ev.Pointer == nil {
			return ErrMissingPayload
		}
		p := ev.Pointer
		e.WriteSvarint(p.PageX)
		e.WriteSvarint(p.PageY)
		e.WriteByte(p.Button)
		e.WriteByte(p.Buttons)
		e.WriteByte(byte(p.Modifiers))
	case ev.Type == EventScroll || ev.Type == EventResize:
		if ev.Viewport == nil {
			return ErrMissingPayload
		}
		e.WriteSvarint(ev.Viewport.X)
		e.WriteSvarint(ev.Viewport.Y)
	default:
		return ErrUnknownEventType
	}
	return nil
}

// DecodeEvent decodes an Event from bytes. The whole input must be
// consumed.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev, err := DecodeEventFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return ev, nil
}

// DecodeEventFrom decodes an Event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	ev := &Event{}
	var err error

	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.Type = EventType(t)
	if ev.Target, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch {
	case ev.Type.IsPointer():
		p := &PointerPayload{}
		if p.PageX, err = d.ReadSvarint(); err != nil {
			return nil, err
		}
		if p.PageY, err = d.ReadSvarint(); err != nil {
			return nil, err
		}
		if p.Button, err = d.ReadByte(); err != nil {
			return nil, err
		}
		if p.Buttons, err = d.ReadByte(); err != nil {
			return nil, err
		}
		mods, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		p.Modifiers = Modifiers(mods)
		ev.Pointer = p

	case ev.Type == EventScroll || ev.Type == EventResize:
		v := &ViewportPayload{}
		if v.X, err = d.ReadSvarint(); err != nil {
			return nil, err
		}
		if v.Y, err = d.ReadSvarint(); err != nil {
			return nil, err
		}
		ev.Viewport = v

	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownEventType, t)
	}
	return ev, nil
}

// NewPointerEvent creates a pointer event with the primary button.
func NewPointerEvent(seq uint64, t EventType, target string, x, y int64) *Event {
	return &Event{
		Seq:     seq,
		Type:    t,
		Target:  target,
		Pointer: &PointerPayload{PageX: x, PageY: y},
	}
}
