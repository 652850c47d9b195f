package protocol

// Signal reports a drag lifecycle signal to the client.
type Signal struct {
	Seq       uint64
	Name      string // drag-started, drag-dragging, drag-completed, drag-canceled
	Element   string // id of the dragged element
	Container string // id of the hovered or target container, "" if none
	Index     int64  // element index within Container once the drag ended, -1 otherwise
	X         int64  // pointer page position
	Y         int64
}

// EncodeSignal encodes a Signal to bytes.
func EncodeSignal(s *Signal) []byte {
	e := NewEncoder()
	EncodeSignalTo(e, s)
	return e.Bytes()
}

// EncodeSignalTo encodes a Signal using the provided encoder.
func EncodeSignalTo(e *Encoder, s *Signal) {
	e.WriteUvarint(s.Seq)
	e.WriteString(s.Name)
	e.WriteString(s.Element)
	e.WriteString(s.Container)
	e.WriteSvarint(s.Index)
	e.WriteSvarint(s.X)
	e.WriteSvarint(s.Y)
}

// DecodeSignal decodes a Signal from bytes.
func DecodeSignal(data []byte) (*Signal, error) {
	d := NewDecoder(data)
	s := &Signal{}
	var err error

	if s.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if s.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if s.Element, err = d.ReadString(); err != nil {
		return nil, err
	}
	if s.Container, err = d.ReadString(); err != nil {
		return nil, err
	}
	if s.Index, err = d.ReadSvarint(); err != nil {
		return nil, err
	}
	if s.X, err = d.ReadSvarint(); err != nil {
		return nil, err
	}
	if s.Y, err = d.ReadSvarint(); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot carries the rendered board after the document changed.
type Snapshot struct {
	Seq  uint64
	HTML string
}

// EncodeSnapshot encodes a Snapshot to bytes.
func EncodeSnapshot(s *Snapshot) []byte {
	e := NewEncoder()
	e.WriteUvarint(s.Seq)
	e.WriteString(s.HTML)
	return e.Bytes()
}

// DecodeSnapshot decodes a Snapshot from bytes.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	d := NewDecoder(data)
	s := &Snapshot{}
	var err error
	if s.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if s.HTML, err = d.ReadString(); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return s, nil
}
