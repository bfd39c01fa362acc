package account

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Solana wallets derive ed25519 keys at m/44'/501'/index'/0' (SLIP-0010,
// hardened-only). Index 0 is the default account.

const (
	purposeIndex  = 44
	coinTypeIndex = 501
)

const hardenedOffset = uint32(0x80000000)

// DerivationPath returns the BIP44-style path for an account index, for
// display and for hardware-device requests.
func DerivationPath(index uint32) []uint32 {
	return []uint32{
		purposeIndex | hardenedOffset,
		coinTypeIndex | hardenedOffset,
		index | hardenedOffset,
		0 | hardenedOffset,
	}
}

// deriveKeypair derives the deterministic keypair for an account index from
// a BIP39 seed.
func deriveKeypair(seed []byte, index uint32) (solana.PrivateKey, error) {
	key, chain := masterKey(seed)
	for _, segment := range DerivationPath(index) {
		key, chain = childKey(key, chain, segment)
	}
	priv := ed25519.NewKeyFromSeed(key)
	return solana.PrivateKey(priv), nil
}

func masterKey(seed []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

func childKey(key, chain []byte, segment uint32) ([]byte, []byte) {
	data := make([]byte, 0, 37)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, segment)

	mac := hmac.New(sha512.New, chain)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
