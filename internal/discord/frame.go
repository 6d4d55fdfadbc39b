package discord

import (
	"encoding/binary"
	"fmt"
	"io"
)

// IPC opcodes. Only the handshake and frame opcodes are needed to push a
// single activity slot.
const (
	opHandshake uint32 = 0
	opFrame     uint32 = 1
)

// maxFrameSize bounds inbound frames; Discord payloads are small JSON.
const maxFrameSize = 1 << 20

// writeFrame sends one length/opcode-framed message.
func writeFrame(w io.Writer, opcode uint32, body []byte) error {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], opcode)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(body)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// readFrame reads one framed message.
func readFrame(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	opcode := binary.LittleEndian.Uint32(header[0:4])
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > maxFrameSize {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return opcode, body, nil
}
