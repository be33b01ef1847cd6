// Package jwt mints the short-lived HS256 token the legacy websocket route
// expects as a query parameter. The HTTP side has moved to session tokens;
// this stays for servers that still authenticate the socket with ?jwt=.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type claims struct {
	CID uint64 `json:"cid"`
	Aud string `json:"aud"`
	Iss string `json:"iss"`
	Iat int64  `json:"iat"`
}

// Mint returns an HS256 token with the claims PaissaDB expects:
// {cid, aud: "PaissaHouse", iss: "PaissaDB", iat}.
func Mint(secret []byte, cid uint64, now time.Time) string {
	enc := base64.RawURLEncoding
	h, _ := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	c, _ := json.Marshal(claims{CID: cid, Aud: "PaissaHouse", Iss: "PaissaDB", Iat: now.Unix()})
	signing := enc.EncodeToString(h) + "." + enc.EncodeToString(c)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signing))
	return signing + "." + enc.EncodeToString(mac.Sum(nil))
}

// Verify checks a token's signature against the shared secret. Used in
// tests and handy when pointing the client at a local server.
func Verify(secret []byte, token string) bool {
	i := lastDot(token)
	if i < 0 {
		return false
	}
	signing, sig := token[:i], token[i+1:]
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signing))
	return hmac.Equal(want, mac.Sum(nil))
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
