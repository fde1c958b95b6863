// Package auth provides bearer-token verification helpers.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Verifier validates bearer tokens and extracts org/role claims.
// Modes: dev (token is "org:role", no verification) and hmac (HS256 JWT).
type Verifier struct {
	Mode       string
	HMACSecret []byte
	OrgClaim   string
	RoleClaim  string
}

// Principal is the authenticated caller.
type Principal struct {
	Org  string
	Role string
}

func NewVerifierFromEnv() *Verifier {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if mode == "" {
		mode = "dev"
	}
	return &Verifier{
		Mode:       mode,
		HMACSecret: []byte(os.Getenv("AUTH_HMAC_SECRET")),
		OrgClaim:   envOr("AUTH_ORG_CLAIM", "org"),
		RoleClaim:  envOr("AUTH_ROLE_CLAIM", "role"),
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (v *Verifier) Verify(token string) (Principal, error) {
	if v.Mode == "dev" {
		parts := strings.Split(token, ":")
		if len(parts) >= 2 {
			return Principal{Org: parts[0], Role: strings.ToLower(parts[1])}, nil
		}
		return Principal{}, errors.New("invalid dev token; expected org:role")
	}
	if v.Mode != "hmac" {
		return Principal{}, errors.New("unsupported auth mode")
	}
	segs := strings.Split(token, ".")
	if len(segs) != 3 {
		return Principal{}, errors.New("invalid JWT")
	}
	headerJSON, err := b64urlDecode(segs[0])
	if err != nil {
		return Principal{}, err
	}
	payloadJSON, err := b64urlDecode(segs[1])
	if err != nil {
		return Principal{}, err
	}
	sig, err := b64urlDecode(segs[2])
	if err != nil {
		return Principal{}, err
	}
	var hdr map[string]any
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return Principal{}, err
	}
	if alg, _ := hdr["alg"].(string); alg != "HS256" {
		return Principal{}, errors.New("unsupported alg")
	}
	mac := hmac.New(sha256.New, v.HMACSecret)
	mac.Write([]byte(segs[0] + "." + segs[1]))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return Principal{}, errors.New("bad signature")
	}
	var claims map[string]any
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return Principal{}, err
	}
	org, _ := claims[v.OrgClaim].(string)
	role, _ := claims[v.RoleClaim].(string)
	if org == "" {
		return Principal{}, errors.New("missing org claim")
	}
	if role == "" {
		role = "user"
	}
	return Principal{Org: org, Role: strings.ToLower(role)}, nil
}

func b64urlDecode(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }
