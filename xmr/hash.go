package xmr

import (
	"golang.org/x/crypto/sha3"

	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/schema"
	"xmrserial.dev/serial/xio"
)

// PrefixHash computes the Keccak-256 digest of the prefix's blockchain
// serialization, streaming the bytes straight into the hash.
func PrefixHash(p *TransactionPrefix, versions *schema.VersionSetting) (Hash, error) {
	hw := xio.NewHashWriter(sha3.NewLegacyKeccak256(), nil)
	ar := blockchain.NewWriter(hw, versions)
	if err := ar.Message(p, TransactionPrefixSpec); err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], hw.Sum())
	return h, nil
}
