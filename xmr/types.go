// Package xmr is the domain schema: the catalog of transaction, ring-signature
// and wallet types, their static descriptors, the version-conditional
// serialization hooks, and the hard-fork profiles that elect versions for the
// blockchain wire format.
//
// Elliptic-curve points and scalars are opaque 32-byte blobs to the codec;
// no cryptographic validation happens here.
package xmr

import "github.com/holiman/uint256"

type Hash [32]byte
type ECKey [32]byte
type ECPoint [32]byte

// Key64 is the fixed 64-key vector of Borromean signatures.
type Key64 [64]ECKey

type KeyV []ECKey
type KeyM []KeyV

//
// Transaction inputs and outputs.
//

// TxIn is the input variant; the active alternative is identified by a
// one-byte tag drawn from the codec's tag table.
type TxIn interface{ isTxIn() }

type TxinGen struct {
	Height uint64
}

type TxinToScript struct{}

type TxinToScriptHash struct{}

type TxinToKey struct {
	Amount uint64
	// KeyOffsets holds relative output offsets; observed values exceed 64
	// bits, so the wide varint path applies.
	KeyOffsets []uint256.Int
	KImage     ECPoint
}

func (*TxinGen) isTxIn()          {}
func (*TxinToScript) isTxIn()     {}
func (*TxinToScriptHash) isTxIn() {}
func (*TxinToKey) isTxIn()        {}

type TxOutTarget interface{ isTxOutTarget() }

type TxoutToScript struct {
	Keys   []ECPoint
	Script []uint8
}

type TxoutToScriptHash struct {
	Hash Hash
}

type TxoutToKey struct {
	Key ECPoint
}

func (*TxoutToScript) isTxOutTarget()     {}
func (*TxoutToScriptHash) isTxOutTarget() {}
func (*TxoutToKey) isTxOutTarget()        {}

type TxOut struct {
	Amount uint64
	Target TxOutTarget
}

type TransactionPrefix struct {
	Version    uint64
	UnlockTime uint64
	Vin        []TxIn
	Vout       []TxOut
	Extra      []uint8
}

// Signature is one ring-signature component of a version-1 transaction.
type Signature struct {
	C ECKey
	R ECKey
}

type Transaction struct {
	TransactionPrefix
	// Signatures carries one signature array per input for version-1
	// transactions; empty when no input expects a signature.
	Signatures    [][]Signature
	RctSignatures RctSig
}

//
// Blocks.
//

type BlockHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	Timestamp    uint64
	PrevID       Hash
	Nonce        uint32
}

type Block struct {
	BlockHeader
	MinerTx  Transaction
	TxHashes []Hash
}

//
// Ring-confidential signatures.
//

const (
	RctTypeNull            uint8 = 0
	RctTypeFull            uint8 = 1
	RctTypeSimple          uint8 = 2
	RctTypeBulletproof     uint8 = 3
	RctTypeBulletproof2    uint8 = 4
	RctTypeCLSAG           uint8 = 5
	RctTypeBulletproofPlus uint8 = 6

	// Historical aliases overlap the newer names; only the numeric value
	// matters on the wire.
	RctTypeFullBulletproof   = RctTypeBulletproof
	RctTypeSimpleBulletproof = RctTypeBulletproof2
)

type CtKey struct {
	Dest ECKey
	Mask ECKey
}

type EcdhTuple struct {
	Mask   ECKey
	Amount ECKey
}

type BoroSig struct {
	S0 Key64
	S1 Key64
	Ee ECKey
}

type RangeSig struct {
	Asig BoroSig
	Ci   Key64
}

// MgSig is an MLSAG signature. The key image II is reconstructed from the
// transaction and is not on the wire.
type MgSig struct {
	Ss []KeyV
	Cc ECKey
}

// ClsagSig is a CLSAG signature; the key image I is likewise off-wire.
type ClsagSig struct {
	S  KeyV
	C1 ECKey
	D  ECKey
}

// Bulletproof holds a range proof. V is reconstructed from outPk and never
// serialized.
type Bulletproof struct {
	V    KeyV
	A    ECKey
	S    ECKey
	T1   ECKey
	T2   ECKey
	Taux ECKey
	Mu   ECKey
	L    KeyV
	R    KeyV
	Aa   ECKey
	Bb   ECKey
	Tt   ECKey
}

type BulletproofPlus struct {
	V  KeyV
	A  ECKey
	A1 ECKey
	B  ECKey
	R1 ECKey
	S1 ECKey
	D1 ECKey
	L  KeyV
	R  KeyV
}

type RctSigBase struct {
	Type    uint8
	TxnFee  uint64
	Message ECKey
	MixRing [][]CtKey
	// PseudoOuts lives here for Simple; Bulletproof flavors carry theirs in
	// the prunable part.
	PseudoOuts KeyV
	EcdhInfo   []EcdhTuple
	OutPk      []CtKey
}

type RctSigPrunable struct {
	RangeSigs        []RangeSig
	Bulletproofs     []Bulletproof
	BulletproofsPlus []BulletproofPlus
	MGs              []MgSig
	Clsags           []ClsagSig
	PseudoOuts       KeyV
}

type RctSig struct {
	RctSigBase
	P RctSigPrunable
}

//
// Wallet-side structures.
//

type AccountPublicAddress struct {
	SpendPublicKey ECPoint
	ViewPublicKey  ECPoint
}

type AccountKeys struct {
	AccountAddress AccountPublicAddress
	SpendSecretKey ECKey
	ViewSecretKey  ECKey
	MultisigKeys   []ECKey
}

type SubaddressIndex struct {
	Major uint32
	Minor uint32
}

type MultisigLR struct {
	L ECKey
	R ECKey
}

type MultisigInfo struct {
	Signer           ECPoint
	LR               []MultisigLR
	PartialKeyImages []ECPoint
}

type MultisigOut struct {
	C []ECKey
}

type MultisigKLRki struct {
	K  ECKey
	L  ECKey
	R  ECKey
	Ki ECKey
}

type MultisigStruct struct {
	Sigs        RctSig
	Ignore      ECPoint
	UsedL       []ECKey
	SigningKeys []ECKey
	Msout       MultisigOut
}

// OutputEntry is the (global index, output key) tuple of a ring member.
type OutputEntry struct {
	Index uint64
	Key   CtKey
}

type TxSourceEntry struct {
	Outputs                 []OutputEntry
	RealOutput              uint64
	RealOutTxKey            ECPoint
	RealOutAdditionalTxKeys []ECPoint
	RealOutputInTxIndex     uint64
	Amount                  uint64
	Rct                     bool
	Mask                    ECKey
	MultisigKLRki           MultisigKLRki
}

// TxDestinationEntry has two wire layouts: version 1 is amount/addr/
// is_subaddress, version 2 prepends the original address string and appends
// the integrated-address flag.
type TxDestinationEntry struct {
	Original     string
	Amount       uint64
	Addr         AccountPublicAddress
	IsSubaddress bool
	IsIntegrated bool
}

// TransferUse is one (height, txid) usage record.
type TransferUse struct {
	Height uint64
	Txid   Hash
}

// TransferDetails is versioned 9..=11: version 10 adds KeyImageRequested,
// version 11 adds Uses. Loads at older versions leave the extras zeroed.
type TransferDetails struct {
	BlockHeight         uint64
	Tx                  TransactionPrefix
	Txid                Hash
	InternalOutputIndex uint64
	GlobalOutputIndex   uint64
	Spent               bool
	SpentHeight         uint64
	KeyImage            ECPoint
	Mask                ECKey
	Amount              uint64
	Rct                 bool
	KeyImageKnown       bool
	PkIndex             uint64
	SubaddrIndex        SubaddressIndex
	KeyImagePartial     bool
	MultisigK           []ECKey
	MultisigInfo        []MultisigInfo
	KeyImageRequested   bool
	Uses                []TransferUse
}

type RctConfig struct {
	RangeProofType uint64
	BpVersion      uint64
}

// TxConstructionData is versioned 2..=4: version 3 appends UseBulletproofs,
// version 4 replaces it with RctConfig. Loading synthesizes the absent field
// from the present one.
type TxConstructionData struct {
	Sources           []TxSourceEntry
	ChangeDts         TxDestinationEntry
	SplittedDsts      []TxDestinationEntry
	SelectedTransfers []uint64
	Extra             []uint8
	UnlockTime        uint64
	UseRct            bool
	UseBulletproofs   bool
	RctConfig         RctConfig
	Dests             []TxDestinationEntry
	SubaddrAccount    uint32
	SubaddrIndices    []uint64
}

type PendingTransaction struct {
	Tx                Transaction
	Dust              uint64
	Fee               uint64
	DustAddedToFee    bool
	ChangeDts         TxDestinationEntry
	SelectedTransfers []uint64
	KeyImages         string
	TxKey             ECKey
	AdditionalTxKeys  []ECKey
	Dests             []TxDestinationEntry
	MultisigSigs      []MultisigStruct
	ConstructionData  TxConstructionData
}

type UnsignedTxSet struct {
	Txes      []TxConstructionData
	Transfers []TransferDetails
}

type SignedTxSet struct {
	Ptx       []PendingTransaction
	KeyImages []ECPoint
}

type MultisigTxSet struct {
	MPtx     []PendingTransaction
	MSigners []ECPoint
}

//
// Transaction extra fields.
//

// TxExtraField is the variant of entries parsed out of a transaction's extra
// byte blob.
type TxExtraField interface{ isTxExtraField() }

// TxExtraPadding spans Size zero bytes; it is only valid as the trailing
// extra field since its load consumes the rest of the input.
type TxExtraPadding struct {
	Size int
}

type TxExtraPubKey struct {
	PubKey ECPoint
}

type TxExtraNonce struct {
	Nonce []byte
}

type TxExtraAdditionalPubKeys struct {
	Data []ECPoint
}

func (*TxExtraPadding) isTxExtraField()           {}
func (*TxExtraPubKey) isTxExtraField()            {}
func (*TxExtraNonce) isTxExtraField()             {}
func (*TxExtraAdditionalPubKeys) isTxExtraField() {}
