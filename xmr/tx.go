package xmr

import (
	"xmrserial.dev/serial"
	"xmrserial.dev/serial/blockchain"
)

// expectedSignatures returns how many version-1 signatures an input requires.
func expectedSignatures(in TxIn) (int, error) {
	switch v := in.(type) {
	case *TxinGen, *TxinToScript, *TxinToScriptHash:
		return 0, nil
	case *TxinToKey:
		return len(v.KeyOffsets), nil
	}
	return 0, serial.E(serial.ERR_UNKNOWN_VARIANT_TAG, "unrecognized txin alternative")
}

// SerializeArchive is the transaction's blockchain layout: the full prefix,
// then either the version-1 signature block or the ring-ct signatures.
func (tx *Transaction) SerializeArchive(ar *blockchain.Archive) error {
	if err := ar.MessageFields(&tx.TransactionPrefix, TransactionPrefixSpec); err != nil {
		return err
	}

	if tx.Version == 1 {
		return tx.serializeSignatures(ar)
	}

	if len(tx.Vin) == 0 {
		return nil
	}
	if err := tx.RctSignatures.SerializeBase(ar, len(tx.Vin), len(tx.Vout)); err != nil {
		return err
	}
	if tx.RctSignatures.Type == RctTypeNull {
		return nil
	}
	mixin := 0
	if k, ok := tx.Vin[0].(*TxinToKey); ok {
		mixin = len(k.KeyOffsets) - 1
	}
	return tx.RctSignatures.P.SerializePrunable(ar, tx.RctSignatures.Type, len(tx.Vin), len(tx.Vout), mixin)
}

// serializeSignatures moves the version-1 signature block: per input, the
// expected number of (c, r) pairs with no prefixes anywhere. A transaction
// whose inputs expect no signatures may omit the block entirely.
func (tx *Transaction) serializeSignatures(ar *blockchain.Archive) error {
	if ar.Writing() {
		if len(tx.Signatures) == 0 {
			for _, in := range tx.Vin {
				n, err := expectedSignatures(in)
				if err != nil {
					return err
				}
				if n != 0 {
					return serial.E(serial.ERR_SIZE_MISMATCH, "input expects signatures but none are present")
				}
			}
			return nil
		}
		if len(tx.Signatures) != len(tx.Vin) {
			return serial.Ef(serial.ERR_SIZE_MISMATCH, "signatures for %d inputs, want %d", len(tx.Signatures), len(tx.Vin))
		}
	} else {
		tx.Signatures = make([][]Signature, len(tx.Vin))
	}

	total := 0
	for i, in := range tx.Vin {
		n, err := expectedSignatures(in)
		if err != nil {
			return err
		}
		total += n
		if ar.Writing() {
			if len(tx.Signatures[i]) != n {
				return serial.Ef(serial.ERR_SIZE_MISMATCH, "input %d has %d signatures, want %d", i, len(tx.Signatures[i]), n)
			}
		} else {
			tx.Signatures[i] = make([]Signature, n)
		}
		for j := range tx.Signatures[i] {
			if err := ar.MessageFields(&tx.Signatures[i][j], SignatureSpec); err != nil {
				return err
			}
		}
	}
	if !ar.Writing() && total == 0 {
		tx.Signatures = nil
	}
	return nil
}
