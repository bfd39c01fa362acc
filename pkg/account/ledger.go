package account

import (
	"encoding/binary"
	"fmt"

	"github.com/karalabe/hid"
)

// USB HID transport for Ledger devices: 64-byte reports carrying a framed
// APDU stream (channel id, tag, sequence index, length prefix on frame 0).

const (
	ledgerVendorID = 0x2c97
	ledgerChannel  = 0x0101
	ledgerTag      = 0x05
	reportSize     = 64
)

// LedgerOpener enumerates and opens the first attached Ledger device.
type LedgerOpener struct{}

// Open implements TransportOpener over USB HID.
func (LedgerOpener) Open() (Transport, error) {
	infos := hid.Enumerate(ledgerVendorID, 0)
	if len(infos) == 0 {
		return nil, fmt.Errorf("no Ledger device found")
	}
	device, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open Ledger device: %w", err)
	}
	return &ledgerTransport{device: device}, nil
}

type ledgerTransport struct {
	device *hid.Device
}

// Exchange writes one framed APDU and reads the framed response.
func (t *ledgerTransport) Exchange(apdu []byte) ([]byte, error) {
	if err := t.write(apdu); err != nil {
		return nil, err
	}
	return t.read()
}

func (t *ledgerTransport) Close() error {
	return t.device.Close()
}

func (t *ledgerTransport) write(apdu []byte) error {
	payload := make([]byte, 0, 2+len(apdu))
	payload = binary.BigEndian.AppendUint16(payload, uint16(len(apdu)))
	payload = append(payload, apdu...)

	for seq := uint16(0); len(payload) > 0; seq++ {
		frame := make([]byte, reportSize)
		binary.BigEndian.PutUint16(frame[0:], ledgerChannel)
		frame[2] = ledgerTag
		binary.BigEndian.PutUint16(frame[3:], seq)

		n := copy(frame[5:], payload)
		payload = payload[n:]

		if _, err := t.device.Write(frame); err != nil {
			return fmt.Errorf("device write failed: %w", err)
		}
	}
	return nil
}

func (t *ledgerTransport) read() ([]byte, error) {
	frame := make([]byte, reportSize)
	var response []byte
	total := -1

	for seq := uint16(0); total < 0 || len(response) < total; seq++ {
		if _, err := t.device.Read(frame); err != nil {
			return nil, fmt.Errorf("device read failed: %w", err)
		}
		if binary.BigEndian.Uint16(frame[0:]) != ledgerChannel || frame[2] != ledgerTag {
			return nil, fmt.Errorf("unexpected frame header from device")
		}
		if binary.BigEndian.Uint16(frame[3:]) != seq {
			return nil, fmt.Errorf("out-of-order frame from device")
		}

		data := frame[5:]
		if seq == 0 {
			total = int(binary.BigEndian.Uint16(data))
			data = data[2:]
		}
		response = append(response, data...)
	}
	return response[:total], nil
}
