package xmr

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/xio"
)

// Pre-ring-ct coinbase transaction prefix captured from chain data.
const prefixFixtureHex = `
013D01FF010680A0DB5002A9243CF5459DE5114E6A1AC08F9180C9F40A3CF9880778878104E9
FEA578B6A780A8D6B90702AFEBACD6A4456AF979CCBE08D37A9A670BA421B5E39AB2968DF421
9DD086018B8088ACA3CF020251748BADE758D1DD65A867FA3CEDD4878485BBC8307F905E3090
A030290672798090CAD2C60E020C823CCBD4AB1A1F9240844400D72CDC8B498B3181B182B0B5
4A405B695406A680E08D84DDCB01022A9A926097548A723863923FBFEA4913B1134B2E4AE549
46268DDA99564B5D8280C0CAF384A30202A868709A8BB91734AD3EBAC127638E018139E375C1
987E01CCC2A8B04427727E2101F74BF5FB3DA064F48090D9B6705E598925313875B2B4F2A50E
B0517264B0721C`

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", ""), " ", "")
	b, err := hex.DecodeString(strings.ToLower(s))
	require.NoError(t, err)
	return b
}

func diffOpts() []cmp.Option {
	return []cmp.Option{cmpopts.EquateEmpty()}
}

func TestPrefixFixtureDecode(t *testing.T) {
	blob := unhex(t, prefixFixtureHex)
	mem := xio.NewMemory(blob)
	ar := blockchain.NewReader(mem, nil)

	var prefix TransactionPrefix
	require.NoError(t, ar.Message(&prefix, TransactionPrefixSpec))
	require.Equal(t, 0, mem.Remaining())

	require.Equal(t, uint64(1), prefix.Version)
	require.Equal(t, uint64(61), prefix.UnlockTime)

	require.Len(t, prefix.Vin, 1)
	gen, ok := prefix.Vin[0].(*TxinGen)
	require.True(t, ok)
	require.Equal(t, uint64(1), gen.Height)

	require.Len(t, prefix.Vout, 6)
	require.Equal(t, uint64(169267200), prefix.Vout[0].Amount)
	require.Equal(t, uint64(2000000000), prefix.Vout[1].Amount)
	require.Equal(t, uint64(10000000000000), prefix.Vout[5].Amount)
	for i, out := range prefix.Vout {
		_, ok := out.Target.(*TxoutToKey)
		require.True(t, ok, "vout %d", i)
	}

	require.Len(t, prefix.Extra, 33)
	require.Equal(t, uint8(1), prefix.Extra[0])
	require.Equal(t, uint8(28), prefix.Extra[32])
}

func TestPrefixFixtureReencode(t *testing.T) {
	blob := unhex(t, prefixFixtureHex)
	var prefix TransactionPrefix
	require.NoError(t, blockchain.NewReader(xio.NewMemory(blob), nil).Message(&prefix, TransactionPrefixSpec))

	out := xio.NewMemory(nil)
	require.NoError(t, blockchain.NewWriter(out, nil).Message(&prefix, TransactionPrefixSpec))
	require.Equal(t, blob, out.Bytes())
}

func TestPrefixRoundTripGenerated(t *testing.T) {
	prefix := samplePrefix()
	blob := dumpBC(t, &prefix, TransactionPrefixSpec, nil)

	var back TransactionPrefix
	loadBC(t, blob, &back, TransactionPrefixSpec, nil)
	require.Empty(t, cmp.Diff(prefix, back, diffOpts()...))

	// A second dump of the loaded value reproduces the bytes.
	require.Equal(t, blob, dumpBC(t, &back, TransactionPrefixSpec, nil))
}

func TestWideKeyOffsets(t *testing.T) {
	in := &TxinToKey{
		Amount:     123,
		KeyOffsets: offsets(1, 2, 3),
		KImage:     ECPoint{0x01},
	}
	in.KeyOffsets = append(in.KeyOffsets, *pow2(76))

	blob := dumpBC(t, in, TxinToKeySpec, nil)
	var back TxinToKey
	loadBC(t, blob, &back, TxinToKeySpec, nil)
	require.Empty(t, cmp.Diff(*in, back, diffOpts()...))
	require.Zero(t, back.KeyOffsets[3].Cmp(pow2(76)))
}
