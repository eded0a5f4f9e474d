package xmr

import (
	"reflect"

	"xmrserial.dev/serial/schema"
)

// Descriptor catalog. Field names are the wire/tracker names; the Go member
// carrying each value is named alongside. Named container types version under
// their own identity in Boost archives, inline vec() containers share a
// structural identity per element type.

func msg(name string, proto any, fields ...schema.Field) *schema.Spec {
	return &schema.Spec{Kind: schema.KindMessage, Name: name, Type: reflect.TypeOf(proto), Fields: fields}
}

func fld(name, goName string, sp *schema.Spec) schema.Field {
	return schema.Field{Name: name, Go: goName, Spec: sp}
}

func vec(elem *schema.Spec) *schema.Spec {
	return &schema.Spec{Kind: schema.KindContainer, Elem: elem}
}

var (
	HashSpec    = &schema.Spec{Kind: schema.KindBlob, Name: "Hash", FixSize: true, Size: 32, Type: reflect.TypeOf(Hash{})}
	ECKeySpec   = &schema.Spec{Kind: schema.KindBlob, Name: "ECKey", FixSize: true, Size: 32, Type: reflect.TypeOf(ECKey{})}
	ECPointSpec = &schema.Spec{Kind: schema.KindBlob, Name: "ECPoint", FixSize: true, Size: 32, Type: reflect.TypeOf(ECPoint{})}

	Key64Spec = &schema.Spec{Kind: schema.KindContainer, Name: "Key64", Elem: ECKeySpec, FixSize: true, Size: 64, RawBoost: true}
	KeyVSpec  = &schema.Spec{Kind: schema.KindContainer, Name: "KeyV", Elem: ECKeySpec}
	KeyMSpec  = &schema.Spec{Kind: schema.KindContainer, Name: "KeyM", Elem: KeyVSpec}

	// Shared inline containers.
	vecKey     = vec(ECKeySpec)
	vecPoint   = vec(ECPointSpec)
	vecUint8   = vec(schema.UInt8)
	vecSizeT   = vec(schema.SizeT)
	vecUvarint = vec(schema.UVarint)
)

//
// cryptonote_basic
//

var TxinGenSpec = msg("TxinGen", TxinGen{},
	fld("height", "Height", schema.UVarint),
)

var TxinToScriptSpec = msg("TxinToScript", TxinToScript{})

var TxinToScriptHashSpec = msg("TxinToScriptHash", TxinToScriptHash{})

var TxinToKeySpec = msg("TxinToKey", TxinToKey{},
	fld("amount", "Amount", schema.UVarint),
	fld("key_offsets", "KeyOffsets", vec(schema.WideUvarint)),
	fld("k_image", "KImage", ECPointSpec),
)

var TxInVSpec = &schema.Spec{Kind: schema.KindVariant, Name: "TxInV", Alts: []schema.Alt{
	{Name: "txin_gen", Spec: TxinGenSpec, Tag: 0xff, BoostTag: 0x00},
	{Name: "txin_to_script", Spec: TxinToScriptSpec, Tag: 0x00, BoostTag: 0x01},
	{Name: "txin_to_scripthash", Spec: TxinToScriptHashSpec, Tag: 0x01, BoostTag: 0x02},
	{Name: "txin_to_key", Spec: TxinToKeySpec, Tag: 0x02, BoostTag: 0x03},
}}

var TxoutToScriptSpec = msg("TxoutToScript", TxoutToScript{},
	fld("keys", "Keys", vecPoint),
	fld("script", "Script", vecUint8),
)

var TxoutToScriptHashSpec = msg("TxoutToScriptHash", TxoutToScriptHash{},
	fld("hash", "Hash", HashSpec),
)

var TxoutToKeySpec = msg("TxoutToKey", TxoutToKey{},
	fld("key", "Key", ECPointSpec),
)

var TxoutTargetVSpec = &schema.Spec{Kind: schema.KindVariant, Name: "TxoutTargetV", Alts: []schema.Alt{
	{Name: "txout_to_script", Spec: TxoutToScriptSpec, Tag: 0x00, BoostTag: 0x00},
	{Name: "txout_to_scripthash", Spec: TxoutToScriptHashSpec, Tag: 0x01, BoostTag: 0x01},
	{Name: "txout_to_key", Spec: TxoutToKeySpec, Tag: 0x02, BoostTag: 0x02},
}}

var TxOutSpec = msg("TxOut", TxOut{},
	fld("amount", "Amount", schema.UVarint),
	fld("target", "Target", TxoutTargetVSpec),
)

var TransactionPrefixSpec = msg("TransactionPrefix", TransactionPrefix{},
	fld("version", "Version", schema.UVarint),
	fld("unlock_time", "UnlockTime", schema.UVarint),
	fld("vin", "Vin", vec(TxInVSpec)),
	fld("vout", "Vout", vec(TxOutSpec)),
	fld("extra", "Extra", vecUint8),
)

var SignatureSpec = msg("Signature", Signature{},
	fld("c", "C", ECKeySpec),
	fld("r", "R", ECKeySpec),
)

var SignatureArraySpec = &schema.Spec{Kind: schema.KindContainer, Name: "SignatureArray", Elem: SignatureSpec}

//
// rctTypes
//

var CtKeySpec = msg("CtKey", CtKey{},
	fld("dest", "Dest", ECKeySpec),
	fld("mask", "Mask", ECKeySpec),
)

var CtkeyVSpec = &schema.Spec{Kind: schema.KindContainer, Name: "CtkeyV", Elem: CtKeySpec}
var CtkeyMSpec = &schema.Spec{Kind: schema.KindContainer, Name: "CtkeyM", Elem: CtkeyVSpec}

var EcdhTupleSpec = msg("EcdhTuple", EcdhTuple{},
	fld("mask", "Mask", ECKeySpec),
	fld("amount", "Amount", ECKeySpec),
)

var EcdhInfoSpec = &schema.Spec{Kind: schema.KindContainer, Name: "EcdhInfo", Elem: EcdhTupleSpec}

var BoroSigSpec = msg("BoroSig", BoroSig{},
	fld("s0", "S0", Key64Spec),
	fld("s1", "S1", Key64Spec),
	fld("ee", "Ee", ECKeySpec),
)

var RangeSigSpec = msg("RangeSig", RangeSig{},
	fld("asig", "Asig", BoroSigSpec),
	fld("Ci", "Ci", Key64Spec),
)

var MgSigSpec = msg("MgSig", MgSig{},
	fld("ss", "Ss", KeyMSpec),
	fld("cc", "Cc", ECKeySpec),
)

var ClsagSpec = msg("CLSAG", ClsagSig{},
	fld("s", "S", KeyVSpec),
	fld("c1", "C1", ECKeySpec),
	fld("D", "D", ECKeySpec),
)

var BulletproofSpec = msg("Bulletproof", Bulletproof{},
	fld("A", "A", ECKeySpec),
	fld("S", "S", ECKeySpec),
	fld("T1", "T1", ECKeySpec),
	fld("T2", "T2", ECKeySpec),
	fld("taux", "Taux", ECKeySpec),
	fld("mu", "Mu", ECKeySpec),
	fld("L", "L", KeyVSpec),
	fld("R", "R", KeyVSpec),
	fld("a", "Aa", ECKeySpec),
	fld("b", "Bb", ECKeySpec),
	fld("t", "Tt", ECKeySpec),
)

var BulletproofPlusSpec = msg("BulletproofPlus", BulletproofPlus{},
	fld("A", "A", ECKeySpec),
	fld("A1", "A1", ECKeySpec),
	fld("B", "B", ECKeySpec),
	fld("r1", "R1", ECKeySpec),
	fld("s1", "S1", ECKeySpec),
	fld("d1", "D1", ECKeySpec),
	fld("L", "L", KeyVSpec),
	fld("R", "R", KeyVSpec),
)

var RctSigBaseSpec = msg("RctSigBase", RctSigBase{},
	fld("type", "Type", schema.UInt8),
	fld("txnFee", "TxnFee", schema.UVarint),
	fld("message", "Message", ECKeySpec),
	fld("mixRing", "MixRing", CtkeyMSpec),
	fld("pseudoOuts", "PseudoOuts", KeyVSpec),
	fld("ecdhInfo", "EcdhInfo", EcdhInfoSpec),
	fld("outPk", "OutPk", CtkeyVSpec),
)

var RctSigPrunableSpec = msg("RctSigPrunable", RctSigPrunable{},
	fld("rangeSigs", "RangeSigs", vec(RangeSigSpec)),
	fld("bulletproofs", "Bulletproofs", vec(BulletproofSpec)),
	fld("bulletproofs_plus", "BulletproofsPlus", vec(BulletproofPlusSpec)),
	fld("MGs", "MGs", vec(MgSigSpec)),
	fld("CLSAGs", "Clsags", vec(ClsagSpec)),
	fld("pseudoOuts", "PseudoOuts", KeyVSpec),
)

var RctSigSpec = msg("RctSig", RctSig{},
	fld("type", "Type", schema.UInt8),
	fld("txnFee", "TxnFee", schema.UVarint),
	fld("message", "Message", ECKeySpec),
	fld("mixRing", "MixRing", CtkeyMSpec),
	fld("pseudoOuts", "PseudoOuts", KeyVSpec),
	fld("ecdhInfo", "EcdhInfo", EcdhInfoSpec),
	fld("outPk", "OutPk", CtkeyVSpec),
	fld("p", "P", RctSigPrunableSpec),
)

var TransactionSpec = msg("Transaction", Transaction{},
	fld("version", "Version", schema.UVarint),
	fld("unlock_time", "UnlockTime", schema.UVarint),
	fld("vin", "Vin", vec(TxInVSpec)),
	fld("vout", "Vout", vec(TxOutSpec)),
	fld("extra", "Extra", vecUint8),
	fld("signatures", "Signatures", vec(SignatureArraySpec)),
	fld("rct_signatures", "RctSignatures", RctSigSpec),
)

//
// Blocks.
//

var BlockHeaderSpec = msg("BlockHeader", BlockHeader{},
	fld("major_version", "MajorVersion", schema.UInt8),
	fld("minor_version", "MinorVersion", schema.UInt8),
	fld("timestamp", "Timestamp", schema.UInt64),
	fld("prev_id", "PrevID", HashSpec),
	fld("nonce", "Nonce", schema.UInt32),
)

var HashVectorSpec = &schema.Spec{Kind: schema.KindContainer, Name: "HashVector", Elem: HashSpec}

var BlockSpec = msg("Block", Block{},
	fld("major_version", "MajorVersion", schema.UInt8),
	fld("minor_version", "MinorVersion", schema.UInt8),
	fld("timestamp", "Timestamp", schema.UInt64),
	fld("prev_id", "PrevID", HashSpec),
	fld("nonce", "Nonce", schema.UInt32),
	fld("miner_tx", "MinerTx", TransactionSpec),
	fld("tx_hashes", "TxHashes", HashVectorSpec),
)

//
// Wallet structures.
//

var AccountPublicAddressSpec = msg("AccountPublicAddress", AccountPublicAddress{},
	fld("m_spend_public_key", "SpendPublicKey", ECPointSpec),
	fld("m_view_public_key", "ViewPublicKey", ECPointSpec),
)

var AccountKeysSpec = msg("AccountKeys", AccountKeys{},
	fld("m_account_address", "AccountAddress", AccountPublicAddressSpec),
	fld("m_spend_secret_key", "SpendSecretKey", ECKeySpec),
	fld("m_view_secret_key", "ViewSecretKey", ECKeySpec),
	fld("m_multisig_keys", "MultisigKeys", vecKey),
)

var SubaddressIndexSpec = msg("SubaddressIndex", SubaddressIndex{},
	fld("major", "Major", schema.UInt32),
	fld("minor", "Minor", schema.UInt32),
)

var MultisigLRSpec = msg("MultisigLR", MultisigLR{},
	fld("L", "L", ECKeySpec),
	fld("R", "R", ECKeySpec),
)

var MultisigInfoSpec = msg("MultisigInfo", MultisigInfo{},
	fld("signer", "Signer", ECPointSpec),
	fld("LR", "LR", vec(MultisigLRSpec)),
	fld("partial_key_images", "PartialKeyImages", vecPoint),
)

var MultisigOutSpec = msg("MultisigOut", MultisigOut{},
	fld("c", "C", vecKey),
)

var MultisigKLRkiSpec = msg("MultisigKLRki", MultisigKLRki{},
	fld("K", "K", ECKeySpec),
	fld("L", "L", ECKeySpec),
	fld("R", "R", ECKeySpec),
	fld("ki", "Ki", ECKeySpec),
)

var MultisigStructSpec = msg("MultisigStruct", MultisigStruct{},
	fld("sigs", "Sigs", RctSigSpec),
	fld("ignore", "Ignore", ECPointSpec),
	fld("used_L", "UsedL", vecKey),
	fld("signing_keys", "SigningKeys", vecKey),
	fld("msout", "Msout", MultisigOutSpec),
)

var OutputEntrySpec = &schema.Spec{Kind: schema.KindTuple, Name: "OutputEntry", Type: reflect.TypeOf(OutputEntry{}), Fields: []schema.Field{
	fld("idx", "Index", schema.UVarint),
	fld("key", "Key", CtKeySpec),
}}

var TxSourceEntrySpec = msg("TxSourceEntry", TxSourceEntry{},
	fld("outputs", "Outputs", vec(OutputEntrySpec)),
	fld("real_output", "RealOutput", schema.SizeT),
	fld("real_out_tx_key", "RealOutTxKey", ECPointSpec),
	fld("real_out_additional_tx_keys", "RealOutAdditionalTxKeys", vecPoint),
	fld("real_output_in_tx_index", "RealOutputInTxIndex", schema.UInt64),
	fld("amount", "Amount", schema.UInt64),
	fld("rct", "Rct", schema.Bool),
	fld("mask", "Mask", ECKeySpec),
	fld("multisig_kLRki", "MultisigKLRki", MultisigKLRkiSpec),
)

// TxDestinationEntrySpec's field list describes the current (version 2)
// layout; the version-1 subset is selected by the custom hook.
var TxDestinationEntrySpec = func() *schema.Spec {
	sp := msg("TxDestinationEntry", TxDestinationEntry{},
		fld("original", "Original", schema.String),
		fld("amount", "Amount", schema.UVarint),
		fld("addr", "Addr", AccountPublicAddressSpec),
		fld("is_subaddress", "IsSubaddress", schema.Bool),
		fld("is_integrated", "IsIntegrated", schema.Bool),
	)
	sp.Version = 2
	return sp
}()

var TransferUseSpec = &schema.Spec{Kind: schema.KindTuple, Type: reflect.TypeOf(TransferUse{}), Fields: []schema.Field{
	fld("height", "Height", schema.SizeT),
	fld("txid", "Txid", HashSpec),
}}

var TransferDetailsSpec = func() *schema.Spec {
	sp := msg("TransferDetails", TransferDetails{},
		fld("m_block_height", "BlockHeight", schema.UInt64),
		fld("m_tx", "Tx", TransactionPrefixSpec),
		fld("m_txid", "Txid", HashSpec),
		fld("m_internal_output_index", "InternalOutputIndex", schema.SizeT),
		fld("m_global_output_index", "GlobalOutputIndex", schema.UInt64),
		fld("m_spent", "Spent", schema.Bool),
		fld("m_spent_height", "SpentHeight", schema.UInt64),
		fld("m_key_image", "KeyImage", ECPointSpec),
		fld("m_mask", "Mask", ECKeySpec),
		fld("m_amount", "Amount", schema.UInt64),
		fld("m_rct", "Rct", schema.Bool),
		fld("m_key_image_known", "KeyImageKnown", schema.Bool),
		fld("m_pk_index", "PkIndex", schema.SizeT),
		fld("m_subaddr_index", "SubaddrIndex", SubaddressIndexSpec),
		fld("m_key_image_partial", "KeyImagePartial", schema.Bool),
		fld("m_multisig_k", "MultisigK", vecKey),
		fld("m_multisig_info", "MultisigInfo", vec(MultisigInfoSpec)),
		fld("m_key_image_requested", "KeyImageRequested", schema.Bool),
		fld("m_uses", "Uses", vec(TransferUseSpec)),
	)
	sp.Version = 11
	return sp
}()

var RctConfigSpec = msg("RctConfig", RctConfig{},
	fld("range_proof_type", "RangeProofType", schema.UVarint),
	fld("bp_version", "BpVersion", schema.UVarint),
)

var TxConstructionDataSpec = func() *schema.Spec {
	sp := msg("TxConstructionData", TxConstructionData{},
		fld("sources", "Sources", vec(TxSourceEntrySpec)),
		fld("change_dts", "ChangeDts", TxDestinationEntrySpec),
		fld("splitted_dsts", "SplittedDsts", vec(TxDestinationEntrySpec)),
		fld("selected_transfers", "SelectedTransfers", vecSizeT),
		fld("extra", "Extra", vecUint8),
		fld("unlock_time", "UnlockTime", schema.UInt64),
		fld("use_rct", "UseRct", schema.Bool),
		fld("rct_config", "RctConfig", RctConfigSpec),
		fld("dests", "Dests", vec(TxDestinationEntrySpec)),
		fld("subaddr_account", "SubaddrAccount", schema.UInt32),
		fld("subaddr_indices", "SubaddrIndices", vecUvarint),
	)
	sp.Version = 4
	return sp
}()

var PendingTransactionSpec = func() *schema.Spec {
	sp := msg("PendingTransaction", PendingTransaction{},
		fld("tx", "Tx", TransactionSpec),
		fld("dust", "Dust", schema.UInt64),
		fld("fee", "Fee", schema.UInt64),
		fld("dust_added_to_fee", "DustAddedToFee", schema.Bool),
		fld("change_dts", "ChangeDts", TxDestinationEntrySpec),
		fld("selected_transfers", "SelectedTransfers", vecSizeT),
		fld("key_images", "KeyImages", schema.String),
		fld("tx_key", "TxKey", ECKeySpec),
		fld("additional_tx_keys", "AdditionalTxKeys", vecKey),
		fld("dests", "Dests", vec(TxDestinationEntrySpec)),
		fld("multisig_sigs", "MultisigSigs", vec(MultisigStructSpec)),
		fld("construction_data", "ConstructionData", TxConstructionDataSpec),
	)
	sp.Version = 3
	return sp
}()

var PendingTransactionVectorSpec = &schema.Spec{Kind: schema.KindContainer, Name: "PendingTransactionVector", Elem: PendingTransactionSpec}

var UnsignedTxSetSpec = msg("UnsignedTxSet", UnsignedTxSet{},
	fld("txes", "Txes", vec(TxConstructionDataSpec)),
	fld("transfers", "Transfers", vec(TransferDetailsSpec)),
)

var SignedTxSetSpec = msg("SignedTxSet", SignedTxSet{},
	fld("ptx", "Ptx", PendingTransactionVectorSpec),
	fld("key_images", "KeyImages", vecPoint),
)

var MultisigTxSetSpec = msg("MultisigTxSet", MultisigTxSet{},
	fld("m_ptx", "MPtx", PendingTransactionVectorSpec),
	fld("m_signers", "MSigners", vecPoint),
)

//
// Transaction extra.
//

var TxExtraPaddingSpec = msg("TxExtraPadding", TxExtraPadding{})

var TxExtraPubKeySpec = msg("TxExtraPubKey", TxExtraPubKey{},
	fld("pub_key", "PubKey", ECPointSpec),
)

var TxExtraNonceSpec = msg("TxExtraNonce", TxExtraNonce{},
	fld("nonce", "Nonce", &schema.Spec{Kind: schema.KindBlob}),
)

var TxExtraAdditionalPubKeysSpec = msg("TxExtraAdditionalPubKeys", TxExtraAdditionalPubKeys{},
	fld("data", "Data", vecPoint),
)

var TxExtraFieldSpec = &schema.Spec{Kind: schema.KindVariant, Name: "TxExtraField", Alts: []schema.Alt{
	{Name: "tx_extra_padding", Spec: TxExtraPaddingSpec, Tag: 0x00, BoostTag: 0x00},
	{Name: "tx_extra_pub_key", Spec: TxExtraPubKeySpec, Tag: 0x01, BoostTag: 0x01},
	{Name: "tx_extra_nonce", Spec: TxExtraNonceSpec, Tag: 0x02, BoostTag: 0x02},
	{Name: "tx_extra_additional_pub_keys", Spec: TxExtraAdditionalPubKeysSpec, Tag: 0x04, BoostTag: 0x04},
}}

func init() {
	schema.Resolve(
		TransactionPrefixSpec, TransactionSpec, BlockSpec, BlockHeaderSpec,
		RctSigBaseSpec, RctSigPrunableSpec, RctSigSpec,
		AccountKeysSpec, UnsignedTxSetSpec, SignedTxSetSpec, MultisigTxSetSpec,
		TxExtraFieldSpec, MgSigSpec, ClsagSpec, RangeSigSpec,
		BulletproofSpec, BulletproofPlusSpec, SignatureArraySpec,
	)
}
