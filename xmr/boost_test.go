package xmr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"xmrserial.dev/serial/boost"
	"xmrserial.dev/serial/xio"
)

// Boost fixtures captured from portable binary archives.
const (
	boostTxinGenHex = `011673657269616c697a6174696f6e3a3a61726368697665000000000134`

	boostCtKeyHex = `011673657269616c697a6174696f6e3a3a6172636869766500000000000001200000000000` +
		`00000000000000000000000000000000000000000000000000000001200000000000000000` +
		`000000000000000000000000000000000000000000000000`

	// Two destination entries sharing one archive; the entry version (1) is
	// stated once and cached for the second record.
	boostDestinationsHex = `011673657269616c697a6174696f6e3a3a6172636869766500000001010144000000000120` +
		`cc000000000000000000000000000000000000000000000000000000000000ee0120aa0000` +
		`00000000000000000000000000000000000000000000000000000000dd0101012201201100` +
		`0000000000000000000000000000000000000000000000000000000000ee01203300000000` +
		`0000000000000000000000000000000000000000000000000000dd00`
)

func key32(first, last byte) (k ECKey) {
	k[0] = first
	k[31] = last
	return k
}

func TestBoostTxinGenFixture(t *testing.T) {
	blob := unhex(t, boostTxinGenHex)
	mem := xio.NewMemory(blob)
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())

	var gen TxinGen
	require.NoError(t, ar.Message(&gen, TxinGenSpec))
	require.Equal(t, uint64(0x34), gen.Height)
	require.Equal(t, 0, mem.Remaining())

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&gen, TxinGenSpec))
	require.Equal(t, blob, out.Bytes())
}

func TestBoostCtKeyFixture(t *testing.T) {
	blob := unhex(t, boostCtKeyHex)
	mem := xio.NewMemory(blob)
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())

	var ck CtKey
	require.NoError(t, ar.Message(&ck, CtKeySpec))
	require.Equal(t, ECKey{}, ck.Dest)
	require.Equal(t, ECKey{}, ck.Mask)
	require.Equal(t, 0, mem.Remaining())

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&ck, CtKeySpec))
	require.Equal(t, blob, out.Bytes())
}

func TestBoostDestinationsFixture(t *testing.T) {
	blob := unhex(t, boostDestinationsHex)
	mem := xio.NewMemory(blob)
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())

	var d1, d2 TxDestinationEntry
	require.NoError(t, ar.Message(&d1, TxDestinationEntrySpec))
	require.NoError(t, ar.Message(&d2, TxDestinationEntrySpec))
	require.Equal(t, 0, mem.Remaining())

	require.Equal(t, uint64(0x44), d1.Amount)
	require.True(t, d1.IsSubaddress)
	require.Equal(t, ECPoint(key32(0xcc, 0xee)), d1.Addr.SpendPublicKey)
	require.Equal(t, ECPoint(key32(0xaa, 0xdd)), d1.Addr.ViewPublicKey)

	require.Equal(t, uint64(0x22), d2.Amount)
	require.False(t, d2.IsSubaddress)
	require.Equal(t, ECPoint(key32(0x11, 0xee)), d2.Addr.SpendPublicKey)
	require.Equal(t, ECPoint(key32(0x33, 0xdd)), d2.Addr.ViewPublicKey)

	// Re-dump under a profile electing the archived version (1).
	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, HardForkProfile(9))
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&d1, TxDestinationEntrySpec))
	require.NoError(t, aw.Message(&d2, TxDestinationEntrySpec))
	require.Equal(t, blob, out.Bytes())
}

func TestBoostBadHeader(t *testing.T) {
	blob := unhex(t, boostTxinGenHex)
	blob[3] ^= 0xff
	ar := boost.NewReader(xio.NewMemory(blob))
	err := ar.Root()
	require.Error(t, err)
}

func TestBoostVersionReadOnce(t *testing.T) {
	// Dumping the same type twice emits its version once; the payload sizes
	// prove it.
	g1 := TxinGen{Height: 1}
	g2 := TxinGen{Height: 2}

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&g1, TxinGenSpec))
	afterFirst := len(out.Bytes())
	require.NoError(t, aw.Message(&g2, TxinGenSpec))
	// First message: track+version (2 bytes) + height (2). Second: height only.
	require.Equal(t, afterFirst+2, len(out.Bytes()))

	mem := xio.NewMemory(out.Bytes())
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())
	var b1, b2 TxinGen
	require.NoError(t, ar.Message(&b1, TxinGenSpec))
	require.NoError(t, ar.Message(&b2, TxinGenSpec))
	require.Equal(t, uint64(1), b1.Height)
	require.Equal(t, uint64(2), b2.Height)
}

func TestBoostUnsupportedTracking(t *testing.T) {
	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	// A non-zero tracking varint before the first type version.
	require.NoError(t, out.WriteAll([]byte{0x01, 0x01}))

	ar := boost.NewReader(xio.NewMemory(out.Bytes()))
	require.NoError(t, ar.Root())
	var g TxinGen
	err := ar.Message(&g, TxinGenSpec)
	require.Error(t, err)
}

func TestBoostUnsignedSetRoundTrip(t *testing.T) {
	set := UnsignedTxSet{
		Txes:      []TxConstructionData{sampleConstruction()},
		Transfers: []TransferDetails{sampleTransfer(1), sampleTransfer(6)},
	}
	prof := HardForkProfile(10)

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, prof)
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&set, UnsignedTxSetSpec))
	blob := append([]byte(nil), out.Bytes()...)

	mem := xio.NewMemory(blob)
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())
	var back UnsignedTxSet
	require.NoError(t, ar.Message(&back, UnsignedTxSetSpec))
	require.Equal(t, 0, mem.Remaining())

	// The v10 era drops the transfer use list and the bulletproof version of
	// the rct config.
	expected := set
	expected.Transfers = []TransferDetails{sampleTransfer(1), sampleTransfer(6)}
	for i := range expected.Transfers {
		expected.Transfers[i].Uses = nil
	}
	exTx := sampleConstruction()
	exTx.RctConfig = RctConfig{RangeProofType: 1}
	expected.Txes = []TxConstructionData{exTx}
	require.Empty(t, cmp.Diff(expected, back, diffOpts()...))

	// Loading then re-dumping reproduces the bytes; the loaded archive's
	// version database mirrors what the wire carried.
	out2 := xio.NewMemory(nil)
	aw2 := boost.NewWriter(out2, prof)
	require.NoError(t, aw2.Root())
	require.NoError(t, aw2.Message(&back, UnsignedTxSetSpec))
	require.Equal(t, blob, out2.Bytes())
}

func TestBoostPendingTransactionRoundTrip(t *testing.T) {
	ptx := PendingTransaction{
		Tx: Transaction{
			TransactionPrefix: samplePrefix(),
			RctSignatures: RctSig{
				RctSigBase: RctSigBase{Type: RctTypeNull},
			},
		},
		Dust:              1,
		Fee:               9119110000,
		DustAddedToFee:    false,
		ChangeDts:         sampleDestination(),
		SelectedTransfers: []uint64{4},
		KeyImages:         "<ki1>",
		TxKey:             testKey(0x42),
		AdditionalTxKeys:  []ECKey{testKey(0x43)},
		Dests:             []TxDestinationEntry{sampleDestination()},
		ConstructionData:  sampleConstruction(),
	}

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&ptx, PendingTransactionSpec))

	mem := xio.NewMemory(out.Bytes())
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())
	var back PendingTransaction
	require.NoError(t, ar.Message(&back, PendingTransactionSpec))
	require.Equal(t, 0, mem.Remaining())
	require.Empty(t, cmp.Diff(ptx, back, diffOpts()...))
}

func TestBoostWideOffsetOverflow(t *testing.T) {
	in := TxinToKey{Amount: 1, KeyOffsets: offsets(1)}
	in.KeyOffsets = append(in.KeyOffsets, *pow2(76))

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	err := aw.Message(&in, TxinToKeySpec)
	require.Error(t, err)
}

func TestBoostAccountKeysRoundTrip(t *testing.T) {
	ak := AccountKeys{
		AccountAddress: AccountPublicAddress{
			SpendPublicKey: testPoint(0x5a),
			ViewPublicKey:  testPoint(0x3b),
		},
		SpendSecretKey: testKey(0xf2),
		ViewSecretKey:  testKey(0x4c),
		MultisigKeys:   []ECKey{testKey(0x19), testKey(0x22)},
	}

	out := xio.NewMemory(nil)
	aw := boost.NewWriter(out, nil)
	require.NoError(t, aw.Root())
	require.NoError(t, aw.Message(&ak, AccountKeysSpec))

	mem := xio.NewMemory(out.Bytes())
	ar := boost.NewReader(mem)
	require.NoError(t, ar.Root())
	var back AccountKeys
	require.NoError(t, ar.Message(&back, AccountKeysSpec))
	require.Equal(t, 0, mem.Remaining())
	require.Empty(t, cmp.Diff(ak, back, diffOpts()...))
}
