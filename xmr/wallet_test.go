package xmr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/xio"
)

func sampleDestination() TxDestinationEntry {
	return TxDestinationEntry{
		Original:     "5original-address",
		Amount:       3845000000000,
		Addr:         AccountPublicAddress{SpendPublicKey: testPoint(0x51), ViewPublicKey: testPoint(0x52)},
		IsSubaddress: true,
		IsIntegrated: true,
	}
}

func sampleTransfer(height uint64) TransferDetails {
	return TransferDetails{
		BlockHeight:         height,
		Tx:                  samplePrefix(),
		Txid:                Hash(testKey(0x61)),
		InternalOutputIndex: 2,
		GlobalOutputIndex:   5,
		Spent:               true,
		SpentHeight:         height + 4,
		KeyImage:            testPoint(0x62),
		Mask:                testKey(0x63),
		Amount:              169267200,
		Rct:                 true,
		KeyImageKnown:       true,
		PkIndex:             1,
		SubaddrIndex:        SubaddressIndex{Major: 0, Minor: 3},
		KeyImagePartial:     false,
		MultisigK:           []ECKey{testKey(0x64)},
		MultisigInfo: []MultisigInfo{{
			Signer:           testPoint(0x65),
			LR:               []MultisigLR{{L: testKey(0x66), R: testKey(0x67)}},
			PartialKeyImages: []ECPoint{testPoint(0x68)},
		}},
		KeyImageRequested: true,
		Uses:              []TransferUse{{Height: height + 1, Txid: Hash(testKey(0x69))}},
	}
}

func sampleConstruction() TxConstructionData {
	dest := sampleDestination()
	return TxConstructionData{
		Sources: []TxSourceEntry{{
			Outputs: []OutputEntry{
				{Index: 3, Key: CtKey{Dest: testKey(0x71), Mask: testKey(0x72)}},
				{Index: 1727, Key: CtKey{Dest: testKey(0x73), Mask: testKey(0x74)}},
			},
			RealOutput:              1,
			RealOutTxKey:            testPoint(0x75),
			RealOutAdditionalTxKeys: []ECPoint{testPoint(0x76)},
			RealOutputInTxIndex:     0,
			Amount:                  100000000000000,
			Rct:                     true,
			Mask:                    testKey(0x77),
		}},
		ChangeDts:         dest,
		SplittedDsts:      []TxDestinationEntry{dest},
		SelectedTransfers: []uint64{0, 2},
		Extra:             []uint8{2, 9, 1, 7},
		UnlockTime:        0,
		UseRct:            true,
		UseBulletproofs:   true,
		RctConfig:         RctConfig{RangeProofType: 1, BpVersion: 2},
		Dests:             []TxDestinationEntry{dest},
		SubaddrAccount:    0,
		SubaddrIndices:    []uint64{0},
	}
}

// stripV1 zeroes the members the version-1 layout does not carry.
func stripV1(d TxDestinationEntry) TxDestinationEntry {
	d.Original = ""
	d.IsIntegrated = false
	return d
}

func TestDestinationVersionLayouts(t *testing.T) {
	d := sampleDestination()

	hf9 := HardForkProfile(9)
	hf10 := HardForkProfile(10)

	v1 := dumpBC(t, &d, TxDestinationEntrySpec, hf9)
	v2 := dumpBC(t, &d, TxDestinationEntrySpec, hf10)
	require.NotEqual(t, v1, v2)
	// Version 1 drops the original string and the integrated flag.
	require.Len(t, v2, len(v1)+len(d.Original)+1+1)

	var backV1 TxDestinationEntry
	loadBC(t, v1, &backV1, TxDestinationEntrySpec, hf9)
	require.Empty(t, cmp.Diff(stripV1(d), backV1, diffOpts()...))

	var backV2 TxDestinationEntry
	loadBC(t, v2, &backV2, TxDestinationEntrySpec, hf10)
	require.Empty(t, cmp.Diff(d, backV2, diffOpts()...))
}

func TestDestinationCrossVersionMisparse(t *testing.T) {
	// Property: load(dump(x, vA), vB) != x for vA != vB — a v2 dump read at
	// v1 either errors or leaves trailing bytes / a different value.
	d := sampleDestination()
	v2 := dumpBC(t, &d, TxDestinationEntrySpec, HardForkProfile(10))

	mem := xio.NewMemory(v2)
	var back TxDestinationEntry
	err := blockchain.NewReader(mem, HardForkProfile(9)).Message(&back, TxDestinationEntrySpec)
	if err == nil {
		mismatched := mem.Remaining() > 0 || !cmp.Equal(d, back, diffOpts()...)
		require.True(t, mismatched)
	}

	// And a v1 dump read at v2 runs out of input or misparses.
	v1 := dumpBC(t, &d, TxDestinationEntrySpec, HardForkProfile(9))
	mem = xio.NewMemory(v1)
	var back2 TxDestinationEntry
	err = blockchain.NewReader(mem, HardForkProfile(10)).Message(&back2, TxDestinationEntrySpec)
	if err == nil {
		mismatched := mem.Remaining() > 0 || !cmp.Equal(d, back2, diffOpts()...)
		require.True(t, mismatched)
	}
}

func TestTransferDetailsVersions(t *testing.T) {
	td := sampleTransfer(6)

	for _, tc := range []struct {
		hf       uint8
		expected func(TransferDetails) TransferDetails
	}{
		{9, func(d TransferDetails) TransferDetails {
			d.KeyImageRequested = false
			d.Uses = nil
			return d
		}},
		{10, func(d TransferDetails) TransferDetails {
			d.Uses = nil
			return d
		}},
	} {
		prof := HardForkProfile(tc.hf)
		// The profile carries the era's TxDestinationEntry version too; the
		// transfer layout only depends on its own entry.
		blob := dumpBC(t, &td, TransferDetailsSpec, prof)
		var back TransferDetails
		loadBC(t, blob, &back, TransferDetailsSpec, prof)
		require.Empty(t, cmp.Diff(tc.expected(td), back, diffOpts()...), "hf %d", tc.hf)
	}

	// Current version carries everything.
	blob := dumpBC(t, &td, TransferDetailsSpec, nil)
	var back TransferDetails
	loadBC(t, blob, &back, TransferDetailsSpec, nil)
	require.Empty(t, cmp.Diff(td, back, diffOpts()...))
}

func TestConstructionDataVersionSynthesis(t *testing.T) {
	c := sampleConstruction()

	// v3 carries use_bulletproofs; the load synthesizes rct_config.
	prof3 := HardForkProfile(10) // TxConstructionData -> 3
	blob := dumpBC(t, &c, TxConstructionDataSpec, prof3)
	var back TxConstructionData
	loadBC(t, blob, &back, TxConstructionDataSpec, prof3)
	require.True(t, back.UseBulletproofs)
	require.Equal(t, RctConfig{RangeProofType: 1, BpVersion: 0}, back.RctConfig)

	// v4 carries rct_config; the load synthesizes use_bulletproofs.
	blob = dumpBC(t, &c, TxConstructionDataSpec, nil)
	loadBC(t, blob, &back, TxConstructionDataSpec, nil)
	require.True(t, back.UseBulletproofs)
	require.Equal(t, c.RctConfig, back.RctConfig)

	// v2 carries neither.
	prof2 := HardForkProfile(9)
	blob = dumpBC(t, &c, TxConstructionDataSpec, prof2)
	var backV2 TxConstructionData
	loadBC(t, blob, &backV2, TxConstructionDataSpec, prof2)
	require.False(t, backV2.UseBulletproofs)
	require.Equal(t, RctConfig{}, backV2.RctConfig)
}

func TestUnsignedTxSetRoundTrip(t *testing.T) {
	set := UnsignedTxSet{
		Txes:      []TxConstructionData{sampleConstruction()},
		Transfers: []TransferDetails{sampleTransfer(1), sampleTransfer(6)},
	}
	prof := HardForkProfile(9)
	blob := dumpBC(t, &set, UnsignedTxSetSpec, prof)

	var back UnsignedTxSet
	loadBC(t, blob, &back, UnsignedTxSetSpec, prof)

	require.Len(t, back.Txes, 1)
	require.Len(t, back.Transfers, 2)
	require.Equal(t, uint64(6), back.Transfers[1].BlockHeight)
	require.Equal(t, uint64(5), back.Transfers[1].GlobalOutputIndex)

	// Byte-identical re-encode under the same profile.
	require.Equal(t, blob, dumpBC(t, &back, UnsignedTxSetSpec, prof))

	// A different era produces different bytes.
	require.NotEqual(t, blob, dumpBC(t, &set, UnsignedTxSetSpec, HardForkProfile(10)))
}
