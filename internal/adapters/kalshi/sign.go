package kalshi

// sign.go — autenticación RSA-PSS del API de Kalshi.
// Cada request firma el payload "timestamp + método + path" con
// RSA-PSS (SHA-256) y lo envía en los headers KALSHI-ACCESS-*.

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
)

// Signer firma requests con la clave privada RSA de la cuenta.
type Signer struct {
	apiKeyID string
	key      *rsa.PrivateKey
}

// NewSigner carga la clave privada PEM (PKCS#1 o PKCS#8) desde disco.
func NewSigner(apiKeyID, privateKeyPath string) (*Signer, error) {
	data, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("kalshi.NewSigner: read key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("kalshi.NewSigner: %q is not PEM", privateKeyPath)
	}

	var key *rsa.PrivateKey
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		key = k
	} else if k8, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rk, ok := k8.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("kalshi.NewSigner: key in %q is not RSA", privateKeyPath)
		}
		key = rk
	} else {
		return nil, fmt.Errorf("kalshi.NewSigner: parse key: %w", err)
	}

	return &Signer{apiKeyID: apiKeyID, key: key}, nil
}

// Sign devuelve la firma base64 de "timestamp + método + path".
func (s *Signer) Sign(timestamp, method, path string) (string, error) {
	digest := sha256.Sum256([]byte(timestamp + method + path))
	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
	if err != nil {
		return "", fmt.Errorf("kalshi.Sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}
