package account

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Transport is an open session with a hardware signing device. Only one
// session per physical device may be open at a time.
type Transport interface {
	// Exchange sends one APDU and returns the response payload including
	// the trailing two-byte status word.
	Exchange(apdu []byte) ([]byte, error)
	Close() error
}

// TransportOpener opens a session with a hardware device. Implementations
// abstract the physical channel (USB HID in production, stubs in tests).
type TransportOpener interface {
	Open() (Transport, error)
}

// Ledger Solana app command set.
const (
	claSolana              = 0xe0
	insGetPubkey           = 0x05
	insSignMessage         = 0x06
	insSignOffchainMessage = 0x07
)

// Status words the device reports on rejection.
const (
	swOK                   = uint16(0x9000)
	swUserRejected         = uint16(0x6985)
	swBlindSigningDisabled = uint16(0x6808)
	swInsNotSupported      = uint16(0x6d00)
)

// An APDU carries at most maxChunkSize data bytes (single-byte Lc field).
// Larger signing payloads are streamed with the p2 continuation flags.
const (
	maxChunkSize = 255

	p2Extend = byte(0x01) // chunk continues a previous one
	p2More   = byte(0x02) // another chunk follows
)

func buildAPDU(ins, p1, p2 byte, data []byte) []byte {
	apdu := make([]byte, 0, 5+len(data))
	apdu = append(apdu, claSolana, ins, p1, p2, byte(len(data)))
	return append(apdu, data...)
}

// exchange sends one APDU, validates the status word and strips it from the
// response.
func exchange(t Transport, ins, p1, p2 byte, data []byte) ([]byte, error) {
	if len(data) > maxChunkSize {
		return nil, fmt.Errorf("apdu data length %d exceeds the %d-byte limit", len(data), maxChunkSize)
	}
	resp, err := t.Exchange(buildAPDU(ins, p1, p2, data))
	if err != nil {
		return nil, fmt.Errorf("device exchange failed: %w", err)
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("short device response (%d bytes)", len(resp))
	}
	sw := binary.BigEndian.Uint16(resp[len(resp)-2:])
	if sw != swOK {
		return nil, statusWordError(sw)
	}
	return resp[:len(resp)-2], nil
}

// statusWordError translates a device status word into an actionable error
// instead of surfacing the raw code.
func statusWordError(sw uint16) error {
	cause := UnknownRejection
	switch sw {
	case swUserRejected:
		cause = RejectedByUser
	case swBlindSigningDisabled:
		cause = BlindSigningDisabled
	case swInsNotSupported:
		cause = FirmwareTooOld
	}
	return &DeviceRejectedError{Cause: cause, StatusWord: sw}
}

// encodePath serializes a derivation path as the app expects: a segment
// count followed by each segment big-endian.
func encodePath(path []uint32) []byte {
	out := make([]byte, 0, 1+4*len(path))
	out = append(out, byte(len(path)))
	for _, segment := range path {
		out = binary.BigEndian.AppendUint32(out, segment)
	}
	return out
}

// devicePubkey asks the device for the public key at the given account index.
func devicePubkey(t Transport, index uint32) (solana.PublicKey, error) {
	resp, err := exchange(t, insGetPubkey, 0, 0, encodePath(DerivationPath(index)))
	if err != nil {
		return solana.PublicKey{}, err
	}
	var pub solana.PublicKey
	if len(resp) != len(pub) {
		return solana.PublicKey{}, fmt.Errorf("unexpected pubkey length %d from device", len(resp))
	}
	copy(pub[:], resp)
	return pub, nil
}

// deviceSign asks the device to sign payload at the given account index
// using the given signing instruction. Path and payload are streamed in
// chunks of at most maxChunkSize bytes; the signature arrives with the final
// chunk's response.
func deviceSign(t Transport, ins byte, index uint32, payload []byte) (solana.Signature, error) {
	data := append(encodePath(DerivationPath(index)), payload...)

	var resp []byte
	for first := true; first || len(data) > 0; first = false {
		n := len(data)
		if n > maxChunkSize {
			n = maxChunkSize
		}
		chunk := data[:n]
		data = data[n:]

		p2 := byte(0)
		if !first {
			p2 |= p2Extend
		}
		if len(data) > 0 {
			p2 |= p2More
		}

		r, err := exchange(t, ins, 1, p2, chunk)
		if err != nil {
			return solana.Signature{}, err
		}
		resp = r
	}
	var sig solana.Signature
	if len(resp) != len(sig) {
		return solana.Signature{}, fmt.Errorf("unexpected signature length %d from device", len(resp))
	}
	copy(sig[:], resp)
	return sig, nil
}
