package xmr

import (
	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/boost"
	"xmrserial.dev/serial/schema"
)

// fieldArchive is the slice of archive surface the version-conditional hooks
// need; both the blockchain and Boost archives satisfy it, so each layout is
// written once and framed per codec by the archive itself.
type fieldArchive interface {
	Field(ptr any, sp *schema.Spec) error
	Writing() bool
}

//
// TxDestinationEntry: version 1 is amount/addr/is_subaddress, version 2
// prepends the original address string and appends the integrated flag.
//

func (d *TxDestinationEntry) SerializeArchive(ar *blockchain.Archive) error {
	return d.serialize(ar, ar.Version(TxDestinationEntrySpec))
}

func (d *TxDestinationEntry) BoostSerialize(ar *boost.Archive, version uint32) error {
	return d.serialize(ar, version)
}

func (d *TxDestinationEntry) serialize(ar fieldArchive, version uint32) error {
	if version >= 2 {
		if err := ar.Field(&d.Original, schema.String); err != nil {
			return err
		}
	}
	if err := ar.Field(&d.Amount, schema.UVarint); err != nil {
		return err
	}
	if err := ar.Field(&d.Addr, AccountPublicAddressSpec); err != nil {
		return err
	}
	if err := ar.Field(&d.IsSubaddress, schema.Bool); err != nil {
		return err
	}
	if version >= 2 {
		return ar.Field(&d.IsIntegrated, schema.Bool)
	}
	return nil
}

//
// TransferDetails: versioned 9..=11.
//

func (t *TransferDetails) SerializeArchive(ar *blockchain.Archive) error {
	return t.serialize(ar, ar.Version(TransferDetailsSpec))
}

func (t *TransferDetails) BoostSerialize(ar *boost.Archive, version uint32) error {
	return t.serialize(ar, version)
}

func (t *TransferDetails) serialize(ar fieldArchive, version uint32) error {
	steps := []struct {
		ptr any
		sp  *schema.Spec
	}{
		{&t.BlockHeight, schema.UInt64},
		{&t.Tx, TransactionPrefixSpec},
		{&t.Txid, HashSpec},
		{&t.InternalOutputIndex, schema.SizeT},
		{&t.GlobalOutputIndex, schema.UInt64},
		{&t.Spent, schema.Bool},
		{&t.SpentHeight, schema.UInt64},
		{&t.KeyImage, ECPointSpec},
		{&t.Mask, ECKeySpec},
		{&t.Amount, schema.UInt64},
		{&t.Rct, schema.Bool},
		{&t.KeyImageKnown, schema.Bool},
		{&t.PkIndex, schema.SizeT},
		{&t.SubaddrIndex, SubaddressIndexSpec},
		{&t.KeyImagePartial, schema.Bool},
		{&t.MultisigK, vecKey},
		{&t.MultisigInfo, vec(MultisigInfoSpec)},
	}
	for _, s := range steps {
		if err := ar.Field(s.ptr, s.sp); err != nil {
			return err
		}
	}
	if version < 10 {
		return nil
	}
	if err := ar.Field(&t.KeyImageRequested, schema.Bool); err != nil {
		return err
	}
	if version < 11 {
		return nil
	}
	return ar.Field(&t.Uses, vec(TransferUseSpec))
}

//
// TxConstructionData: versioned 2..=4. The v3 bulletproof flag and the v4
// rct config occupy the same trailing position; a load synthesizes whichever
// one the wire did not carry.
//

func (c *TxConstructionData) SerializeArchive(ar *blockchain.Archive) error {
	return c.serialize(ar, ar.Version(TxConstructionDataSpec))
}

func (c *TxConstructionData) BoostSerialize(ar *boost.Archive, version uint32) error {
	return c.serialize(ar, version)
}

func (c *TxConstructionData) serialize(ar fieldArchive, version uint32) error {
	steps := []struct {
		ptr any
		sp  *schema.Spec
	}{
		{&c.Sources, vec(TxSourceEntrySpec)},
		{&c.ChangeDts, TxDestinationEntrySpec},
		{&c.SplittedDsts, vec(TxDestinationEntrySpec)},
		{&c.SelectedTransfers, vecSizeT},
		{&c.Extra, vecUint8},
		{&c.UnlockTime, schema.UInt64},
		{&c.UseRct, schema.Bool},
		{&c.Dests, vec(TxDestinationEntrySpec)},
		{&c.SubaddrAccount, schema.UInt32},
		{&c.SubaddrIndices, vecUvarint},
	}
	for _, s := range steps {
		if err := ar.Field(s.ptr, s.sp); err != nil {
			return err
		}
	}
	switch {
	case version >= 4:
		if err := ar.Field(&c.RctConfig, RctConfigSpec); err != nil {
			return err
		}
		if !ar.Writing() {
			c.UseBulletproofs = c.RctConfig.RangeProofType != 0
		}
	case version == 3:
		if err := ar.Field(&c.UseBulletproofs, schema.Bool); err != nil {
			return err
		}
		if !ar.Writing() {
			c.RctConfig = RctConfig{BpVersion: 0}
			if c.UseBulletproofs {
				c.RctConfig.RangeProofType = 1
			}
		}
	}
	return nil
}
