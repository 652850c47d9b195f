// Package protocol implements the binary wire protocol between a dragsort
// board and its browser.
//
// Pointer events flow from the browser to the server; drag signals,
// document snapshots and errors flow back. Encoding is hand-written with no
// reflection.
//
// # Wire Format
//
// Every message is framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHandshake (0x00): Hello from the client, Welcome from the server
//   - FrameEvent (0x01): Client → Server pointer and scroll events
//   - FrameSignal (0x02): Server → Client drag signals
//   - FrameControl (0x03): Ping, pong and close
//   - FrameSnapshot (0x04): Server → Client rendered board body
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: unsigned integers, protobuf-style
//   - ZigZag: signed integers encoded as unsigned varints
//   - Length-prefixed: strings prefixed with their varint length
//   - Big-endian: fixed-width integers
//
// # Events
//
// A pointer event at page position (120, 48) on element "card-1":
//
//	[Seq: varint][Type: 0x03][Target: "card-1"][X: zigzag][Y: zigzag]
//	[Button][Buttons][Modifiers]
//
// Coordinates are whole CSS pixels in page space.
package protocol
