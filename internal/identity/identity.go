// Package identity turns a proof presented by the login widget into a stable subject.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrMissingProof       = errors.New("identity proof is required")
	ErrVerificationFailed = errors.New("identity verification failed")
)

// Proof is what the login widget hands back after a successful verification.
// Token carries a signed identity assertion for providers that issue one.
type Proof struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
	Signal            string `json:"signal,omitempty"`
	Action            string `json:"-"`
	Token             string `json:"-"`
}

// Verifier resolves a proof to the provider's stable subject identifier.
type Verifier interface {
	Verify(ctx context.Context, p Proof) (string, error)
}

// DevVerifier trusts the nullifier hash as-is. Local development only.
type DevVerifier struct {
	Now func() time.Time
}

func (v DevVerifier) Verify(_ context.Context, p Proof) (string, error) {
	if p.NullifierHash != "" {
		return p.NullifierHash, nil
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return "mock_" + strconv.FormatInt(now().UnixMilli(), 10), nil
}

// ProviderError is returned when the verification service rejects a proof.
type ProviderError struct {
	Status int
	Code   string
	Detail string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected proof (status %d, code %q): %s", e.Status, e.Code, e.Detail)
}

func (e *ProviderError) Unwrap() error { return ErrVerificationFailed }
