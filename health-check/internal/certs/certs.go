// Package certs issues the self-signed certificate the health-check server
// terminates TLS with. The load balancer in front does not verify it.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"
)

const (
	DefaultKeyPath  = "/tmp/health-check.key"
	DefaultCertPath = "/tmp/health-check.crt"

	keyBits  = 2048
	validFor = 365 * 24 * time.Hour
)

// Subject is the distinguished name on every issued certificate.
var Subject = pkix.Name{
	Country:      []string{"US"},
	Province:     []string{"Washington"},
	Locality:     []string{"Seattle"},
	Organization: []string{"Launch"},
	CommonName:   "health-check.internal",
}

// Pair is a PEM encoded certificate and its private key.
type Pair struct {
	CertPEM []byte
	KeyPEM  []byte
}

// Generate issues a fresh self-signed certificate valid from now for one
// year.
func Generate(now time.Time) (*Pair, error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial: %w", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               Subject,
		Issuer:                Subject,
		NotBefore:             now,
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:              []string{Subject.CommonName, "localhost"},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	return &Pair{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	}, nil
}

// TLSCertificate parses the pair for use in a tls.Config.
func (p *Pair) TLSCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair(p.CertPEM, p.KeyPEM)
}

// Write stores the pair at the given paths. The key is written 0600.
func (p *Pair) Write(certPath, keyPath string) error {
	if err := os.WriteFile(keyPath, p.KeyPEM, 0o600); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}
	if err := os.WriteFile(certPath, p.CertPEM, 0o644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	return nil
}

// Load reads a pair written earlier.
func Load(certPath, keyPath string) (*Pair, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, err
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	return &Pair{CertPEM: certPEM, KeyPEM: keyPEM}, nil
}

// Ensure loads the pair at the paths, issuing and writing a new one when
// either file is missing or the stored certificate has expired.
func Ensure(certPath, keyPath string, now time.Time) (*Pair, error) {
	p, err := Load(certPath, keyPath)
	switch {
	case err == nil:
		if leaf, perr := p.leaf(); perr == nil && now.Before(leaf.NotAfter) {
			return p, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	p, err = Generate(now)
	if err != nil {
		return nil, err
	}
	if err := p.Write(certPath, keyPath); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pair) leaf() (*x509.Certificate, error) {
	block, _ := pem.Decode(p.CertPEM)
	if block == nil {
		return nil, errors.New("no PEM certificate block")
	}
	return x509.ParseCertificate(block.Bytes)
}
