package scrypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	msg := []byte("meet at the usual place")
	sealed, err := Seal(msg, []byte("correct horse"))
	require.NoError(t, err)
	require.Len(t, sealed, overhead+len(msg))
	require.False(t, bytes.Contains(sealed, msg), "sealed payload must not leak the message")

	opened, err := Open(sealed, []byte("correct horse"))
	require.NoError(t, err)
	require.Equal(t, msg, opened)
}

func TestSealDeterministicWithFixedRandom(t *testing.T) {
	random := bytes.Repeat([]byte{7}, 100)
	a, err := sealWith(bytes.NewReader(random), []byte("m"), []byte("passphrase"))
	require.NoError(t, err)
	b, err := sealWith(bytes.NewReader(random), []byte("m"), []byte("passphrase"))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestOpenFailures(t *testing.T) {
	sealed, err := Seal([]byte("payload"), []byte("passphrase-one"))
	require.NoError(t, err)

	_, err = Open(sealed, []byte("passphrase-two"))
	require.ErrorIs(t, err, ErrAuthentication)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 1
	_, err = Open(tampered, []byte("passphrase-one"))
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = Open(sealed[:overhead-1], []byte("passphrase-one"))
	require.ErrorIs(t, err, ErrEnvelope)
}

func TestDeriveKey(t *testing.T) {
	k1 := DeriveKey([]byte("pw"), []byte("salt"))
	k2 := DeriveKey([]byte("pw"), []byte("salt"))
	k3 := DeriveKey([]byte("pw"), []byte("pepper"))
	require.Len(t, k1, 32)
	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
	require.Len(t, Fingerprint(k1), 8)
}
