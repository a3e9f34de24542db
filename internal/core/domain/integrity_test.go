package domain_test

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/core/domain"
)

func TestComputeIntegrity(t *testing.T) {
	data := []byte("export default 1")
	sum := sha256.Sum256(data)

	got, err := domain.ComputeIntegrity("sha256", data)
	require.NoError(t, err)
	assert.Equal(t, "sha256-"+base64.StdEncoding.EncodeToString(sum[:]), got)

	_, err = domain.ComputeIntegrity("md5", data)
	assert.ErrorIs(t, err, domain.ErrInvalidIntegrity)
}

func TestVerifyIntegrity(t *testing.T) {
	data := []byte("console.log('hi')")
	good384, err := domain.ComputeIntegrity("sha384", data)
	require.NoError(t, err)
	good512, err := domain.ComputeIntegrity("sha512", data)
	require.NoError(t, err)
	other, err := domain.ComputeIntegrity("sha384", []byte("tampered"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		expected string
		wantErr  error
	}{
		{name: "empty expectation", expected: ""},
		{name: "matching sha384", expected: good384},
		{name: "matching sha512", expected: good512},
		{name: "any of several", expected: other + " " + good512},
		{name: "mismatch", expected: other, wantErr: domain.ErrIntegrityMismatch},
		{name: "malformed", expected: "sha384", wantErr: domain.ErrInvalidIntegrity},
		{name: "unknown algorithm", expected: "md5-AAAA", wantErr: domain.ErrInvalidIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.VerifyIntegrity(tt.expected, data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifyIntegrity_MismatchMetadata(t *testing.T) {
	data := []byte("a")
	expected, err := domain.ComputeIntegrity("sha256", []byte("b"))
	require.NoError(t, err)

	err = domain.VerifyIntegrity(expected, data)
	require.Error(t, err)

	meta := domain.Metadata(err)
	assert.Equal(t, expected, meta["expected"])
	actual, err := domain.ComputeIntegrity("sha384", data)
	require.NoError(t, err)
	assert.Equal(t, actual, meta["actual"])
}
