package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CloudVerifier checks proofs against the World ID developer portal.
type CloudVerifier struct {
	httpClient *http.Client
	verifyURL  string
	appID      string
	action     string
}

type cloudRequest struct {
	NullifierHash     string `json:"nullifier_hash"`
	MerkleRoot        string `json:"merkle_root"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
	Action            string `json:"action"`
	Signal            string `json:"signal,omitempty"`
}

type cloudResponse struct {
	Success       bool   `json:"success"`
	NullifierHash string `json:"nullifier_hash"`
	Code          string `json:"code"`
	Detail        string `json:"detail"`
}

func NewCloudVerifier(verifyURL, appID, action string, timeout time.Duration) *CloudVerifier {
	return &CloudVerifier{
		httpClient: &http.Client{Timeout: timeout},
		verifyURL:  strings.TrimRight(verifyURL, "/"),
		appID:      appID,
		action:     action,
	}
}

func (v *CloudVerifier) Verify(ctx context.Context, p Proof) (string, error) {
	if p.NullifierHash == "" || p.Proof == "" || p.MerkleRoot == "" {
		return "", ErrMissingProof
	}

	action := v.action
	if p.Action != "" {
		action = p.Action
	}

	body, err := json.Marshal(cloudRequest{
		NullifierHash:     p.NullifierHash,
		MerkleRoot:        p.MerkleRoot,
		Proof:             p.Proof,
		VerificationLevel: p.VerificationLevel,
		Action:            action,
		Signal:            p.Signal,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode proof: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL+"/"+v.appID, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach verification service: %w", err)
	}
	defer resp.Body.Close()

	var out cloudResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to decode verify response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		return "", &ProviderError{Status: resp.StatusCode, Code: out.Code, Detail: out.Detail}
	}

	if out.NullifierHash != "" {
		return out.NullifierHash, nil
	}
	return p.NullifierHash, nil
}
