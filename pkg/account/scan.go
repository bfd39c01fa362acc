package account

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// ScannedAccount is one derivation index discovered during a device scan.
type ScannedAccount struct {
	Index   uint32
	Address string
	Balance uint64 // fee-adjusted, lamports
	Err     error  // balance query failure for this index, if any
}

// ScanAccounts walks derivation indices 0..maxAccounts-1 on a hardware
// device, querying the address and spendable balance for each. Useful for
// recovering which index holds funds. The whole scan runs over a single
// transport session, released on every exit path; a failed balance query is
// recorded on its entry and does not abort the scan.
func ScanAccounts(ctx context.Context, opener TransportOpener, client ChainClient, commitment rpc.CommitmentType, maxAccounts uint32) ([]ScannedAccount, error) {
	t, err := opener.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open device transport: %w", err)
	}
	defer t.Close()

	accounts := make([]ScannedAccount, 0, maxAccounts)
	for index := uint32(0); index < maxAccounts; index++ {
		pub, err := devicePubkey(t, index)
		if err != nil {
			return accounts, fmt.Errorf("failed to read public key for index %d: %w", index, err)
		}

		entry := ScannedAccount{Index: index, Address: pub.String()}
		entry.Balance, entry.Err = spendableBalance(ctx, client, pub, commitment)
		accounts = append(accounts, entry)
	}
	return accounts, nil
}
