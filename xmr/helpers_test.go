package xmr

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"xmrserial.dev/serial/blockchain"
	"xmrserial.dev/serial/schema"
	"xmrserial.dev/serial/xio"
)

func dumpBC(t *testing.T, msg any, sp *schema.Spec, versions *schema.VersionSetting) []byte {
	t.Helper()
	mem := xio.NewMemory(nil)
	require.NoError(t, blockchain.NewWriter(mem, versions).Message(msg, sp))
	return mem.Bytes()
}

func loadBC(t *testing.T, blob []byte, msg any, sp *schema.Spec, versions *schema.VersionSetting) {
	t.Helper()
	mem := xio.NewMemory(blob)
	require.NoError(t, blockchain.NewReader(mem, versions).Message(msg, sp))
	require.Equal(t, 0, mem.Remaining(), "trailing bytes after load")
}

func offsets(vals ...uint64) []uint256.Int {
	out := make([]uint256.Int, len(vals))
	for i, v := range vals {
		out[i].SetUint64(v)
	}
	return out
}

func pow2(n uint) *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), n)
}

func testKey(b byte) (k ECKey) {
	for i := range k {
		k[i] = b + byte(i)
	}
	return k
}

func testPoint(b byte) (p ECPoint) {
	for i := range p {
		p[i] = b ^ byte(i)
	}
	return p
}

func testKey64(seed byte) (k Key64) {
	for i := range k {
		k[i] = testKey(seed + byte(i))
	}
	return k
}

func keys(seeds ...byte) KeyV {
	out := make(KeyV, len(seeds))
	for i, s := range seeds {
		out[i] = testKey(s)
	}
	return out
}

// samplePrefix builds a small mixed prefix: two to-key inputs, a coinbase
// input and two to-key outputs.
func samplePrefix() TransactionPrefix {
	in1 := &TxinToKey{Amount: 123, KeyOffsets: offsets(1, 2, 3), KImage: testPoint(0x10)}
	in2 := &TxinToKey{Amount: 456, KeyOffsets: offsets(9, 8, 7, 6), KImage: testPoint(0x20)}
	in3 := &TxinGen{Height: 99}

	extra := make([]uint8, 31)
	for i := range extra {
		extra[i] = uint8(i)
	}
	return TransactionPrefix{
		Version:    2,
		UnlockTime: 10,
		Vin:        []TxIn{in1, in2, in3},
		Vout: []TxOut{
			{Amount: 11, Target: &TxoutToKey{Key: testPoint(0x30)}},
			{Amount: 34, Target: &TxoutToKey{Key: testPoint(0x40)}},
		},
		Extra: extra,
	}
}

// fullEcdh returns outputs full ecdh tuples for the pre-truncation types.
func fullEcdh(n int, seed byte) []EcdhTuple {
	out := make([]EcdhTuple, n)
	for i := range out {
		out[i] = EcdhTuple{Mask: testKey(seed + byte(2*i)), Amount: testKey(seed + byte(2*i+1))}
	}
	return out
}

// truncEcdh returns tuples carrying only the eight on-wire amount bytes, the
// shape type>=Bulletproof2 loads produce.
func truncEcdh(n int, seed byte) []EcdhTuple {
	out := make([]EcdhTuple, n)
	for i := range out {
		for j := 0; j < 8; j++ {
			out[i].Amount[j] = seed + byte(8*i+j)
		}
	}
	return out
}

func identityOutPk(n int, seed byte) []CtKey {
	out := make([]CtKey, n)
	for i := range out {
		out[i] = CtKey{Dest: keyIdentity, Mask: testKey(seed + byte(i))}
	}
	return out
}
