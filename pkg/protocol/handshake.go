package protocol

// HandshakeStatus represents the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeServerBusy      HandshakeStatus = 0x04
	HandshakeInvalidFormat   HandshakeStatus = 0x06
	HandshakeInternalError   HandshakeStatus = 0x08
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Version is a protocol version as major.minor.
type Version struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the protocol version spoken by this package.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Compatible reports whether v can talk to CurrentVersion.
func (v Version) Compatible() bool {
	return v.Major == CurrentVersion.Major
}

// Hello is the first frame a client sends. It carries the browser's
// viewport so the server lays the board out at the same width.
type Hello struct {
	Version       Version
	ViewportWidth uint16
	ScrollX       int64
	ScrollY       int64
}

// Welcome is the server's answer to Hello.
type Welcome struct {
	Status     HandshakeStatus
	BoardID    string
	ServerTime uint64 // Unix milliseconds
}

// EncodeHello encodes a Hello to bytes.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteUint16(h.ViewportWidth)
	e.WriteSvarint(h.ScrollX)
	e.WriteSvarint(h.ScrollY)
	return e.Bytes()
}

// DecodeHello decodes a Hello from bytes.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	h := &Hello{}
	var err error

	if h.Version.Major, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.ViewportWidth, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.ScrollX, err = d.ReadSvarint(); err != nil {
		return nil, err
	}
	if h.ScrollY, err = d.ReadSvarint(); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return h, nil
}

// EncodeWelcome encodes a Welcome to bytes.
func EncodeWelcome(w *Welcome) []byte {
	e := NewEncoder()
	e.WriteByte(byte(w.Status))
	e.WriteString(w.BoardID)
	e.WriteUint64(w.ServerTime)
	return e.Bytes()
}

// DecodeWelcome decodes a Welcome from bytes.
func DecodeWelcome(data []byte) (*Welcome, error) {
	d := NewDecoder(data)
	w := &Welcome{}

	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	w.Status = HandshakeStatus(status)
	if w.BoardID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if w.ServerTime, err = d.ReadUint64(); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return w, nil
}
