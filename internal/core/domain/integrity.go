package domain

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"hash"
	"strings"

	"go.trai.ch/zerr"
)

// DefaultIntegrityAlgorithm is used when spool computes integrity strings itself.
const DefaultIntegrityAlgorithm = "sha384"

var integrityAlgorithms = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// ComputeIntegrity returns the subresource integrity string of data for the
// given algorithm, e.g. "sha384-<base64>".
func ComputeIntegrity(algorithm string, data []byte) (string, error) {
	newHash, ok := integrityAlgorithms[algorithm]
	if !ok {
		return "", zerr.With(zerr.Wrap(ErrInvalidIntegrity, "unsupported algorithm"), "algorithm", algorithm)
	}
	h := newHash()
	_, _ = h.Write(data)
	return algorithm + "-" + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// VerifyIntegrity checks data against an integrity string. Several
// space-separated digests may be given; data matches when any of them does.
// An empty expectation always matches.
func VerifyIntegrity(expected string, data []byte) error {
	fields := strings.Fields(expected)
	if len(fields) == 0 {
		return nil
	}

	for _, field := range fields {
		algorithm, digest, ok := strings.Cut(field, "-")
		if !ok || digest == "" {
			return zerr.With(zerr.Wrap(ErrInvalidIntegrity, "malformed digest"), "integrity", field)
		}
		actual, err := ComputeIntegrity(algorithm, data)
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(actual), []byte(field)) == 1 {
			return nil
		}
	}

	actual, _ := ComputeIntegrity(DefaultIntegrityAlgorithm, data)
	err := zerr.Wrap(ErrIntegrityMismatch, "content does not match its integrity")
	err = zerr.With(err, "expected", expected)
	return zerr.With(err, "actual", actual)
}
