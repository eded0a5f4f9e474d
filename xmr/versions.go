package xmr

import "xmrserial.dev/serial/schema"

// Hard-fork profiles: immutable tables electing a serialization version for
// every version-conditional wallet type of a protocol era. An absent entry
// falls back to the type's declared current version.

// HardForkProfile returns the profile for the given hard-fork number. Only
// the v9 and v10/v11 eras are distinguished; later forks changed none of the
// layouts handled here.
func HardForkProfile(hf uint8) *schema.VersionSetting {
	vs := schema.NewVersionSetting()
	vs.Set(TxSourceEntrySpec, 1)
	vs.Set(PendingTransactionSpec, 3)
	vs.Set(MultisigInfoSpec, 1)
	vs.Set(MultisigLRSpec, 0)
	vs.Set(UnsignedTxSetSpec, 0)
	vs.Set(SignedTxSetSpec, 0)
	vs.Set(MultisigTxSetSpec, 0)
	if hf >= 10 {
		vs.Set(TxDestinationEntrySpec, 2)
		vs.Set(TxConstructionDataSpec, 3)
		vs.Set(TransferDetailsSpec, 10)
	} else {
		vs.Set(TxDestinationEntrySpec, 1)
		vs.Set(TxConstructionDataSpec, 2)
		vs.Set(TransferDetailsSpec, 9)
	}
	return vs
}
