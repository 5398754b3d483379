package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestDevVerifier(t *testing.T) {
	v := DevVerifier{Now: func() time.Time { return time.UnixMilli(1700000000000) }}

	sub, err := v.Verify(context.Background(), Proof{NullifierHash: "0xabc"})
	if err != nil || sub != "0xabc" {
		t.Fatalf("Verify = %q, %v", sub, err)
	}

	sub, err = v.Verify(context.Background(), Proof{})
	if err != nil || sub != "mock_1700000000000" {
		t.Fatalf("Verify without nullifier = %q, %v", sub, err)
	}
}

func TestCloudVerifier(t *testing.T) {
	var gotPath string
	var gotBody cloudRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		if gotBody.Proof == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":"invalid_proof","detail":"The provided proof is invalid."}`))
			return
		}
		w.Write([]byte(`{"success":true,"nullifier_hash":"0xnull","action":"login"}`))
	}))
	defer srv.Close()

	v := NewCloudVerifier(srv.URL+"/api/v2/verify/", "app_123", "login", 2*time.Second)

	sub, err := v.Verify(context.Background(), Proof{
		MerkleRoot:        "0xroot",
		NullifierHash:     "0xnull",
		Proof:             "0xproof",
		VerificationLevel: "orb",
	})
	if err != nil {
		t.Fatal(err)
	}
	if sub != "0xnull" {
		t.Fatalf("subject = %q", sub)
	}
	if gotPath != "/api/v2/verify/app_123" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody.Action != "login" || gotBody.MerkleRoot != "0xroot" {
		t.Fatalf("unexpected request body %+v", gotBody)
	}

	_, err = v.Verify(context.Background(), Proof{MerkleRoot: "r", NullifierHash: "n", Proof: "bad"})
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != "invalid_proof" || perr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected provider error %#v", err)
	}

	if _, err := v.Verify(context.Background(), Proof{NullifierHash: "n"}); !errors.Is(err, ErrMissingProof) {
		t.Fatalf("expected ErrMissingProof, got %v", err)
	}
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier("s3cret", "https://id.example.com", "friendpool")
	valid := jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "https://id.example.com",
		Audience:  jwt.ClaimStrings{"friendpool"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	sub, err := v.Verify(context.Background(), Proof{Token: signToken(t, "s3cret", valid)})
	if err != nil || sub != "user-42" {
		t.Fatalf("Verify = %q, %v", sub, err)
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAudience := valid
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	noSubject := valid
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrMissingProof},
		{"bad signature", signToken(t, "other", valid), ErrVerificationFailed},
		{"expired", signToken(t, "s3cret", expired), ErrVerificationFailed},
		{"wrong audience", signToken(t, "s3cret", wrongAudience), ErrVerificationFailed},
		{"no subject", signToken(t, "s3cret", noSubject), ErrVerificationFailed},
		{"garbage", "not.a.jwt", ErrVerificationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), Proof{Token: tt.token}); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
