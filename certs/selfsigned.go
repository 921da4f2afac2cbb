// Package certs generates self-signed ECDSA P-256 certificates for a
// transport.Server's TLS listener. WebTransport requires certificates
// with at most 14-day validity and has clients pin the certificate's
// SHA-256 fingerprint directly (serverCertificateHashes) rather than
// chain to a trusted root, so unlike a normal HTTPS deployment the SAN
// set matters mainly for clients that do perform hostname validation
// (e.g. a browser falling back to the system trust store).
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"fmt"
	"math/big"
	"net"
	"time"
)

const maxValidity = 14 * 24 * time.Hour // WebTransport requires ≤14 days

// CertInfo holds a TLS certificate and its SHA-256 fingerprint.
type CertInfo struct {
	TLSCert     tls.Certificate
	Fingerprint [32]byte
	NotAfter    time.Time
}

// FingerprintBase64 returns the SHA-256 fingerprint as base64, the form
// a WebTransport client pins via serverCertificateHashes.
func (c *CertInfo) FingerprintBase64() string {
	return base64.StdEncoding.EncodeToString(c.Fingerprint[:])
}

// Options configures the certificate's subject and subject-alternative
// names around how it will actually be served.
type Options struct {
	// ServerName becomes the certificate's subject CommonName. Defaults
	// to "moqt-relay".
	ServerName string
	// Addr is the transport.Server listen address (or the address a
	// Dialer will target), e.g. "0.0.0.0:4433" or "relay.example:4433".
	// Its host is added as a SAN so a client dialing that exact address
	// can validate the certificate's name; a bare port ("" host, as in
	// ":4433") contributes no SAN beyond the defaults below.
	Addr string
	// ExtraHosts are additional DNS names or IP literals to include as
	// SANs, e.g. a relay's public hostname when Addr is a loopback
	// address the process actually binds to.
	ExtraHosts []string
	// Validity is the requested certificate lifetime, capped at 14
	// days. Zero means the cap.
	Validity time.Duration
}

// Generate creates a new self-signed ECDSA P-256 certificate for opts.
func Generate(opts Options) (*CertInfo, error) {
	validity := opts.Validity
	if validity > maxValidity || validity <= 0 {
		validity = maxValidity
	}
	serverName := opts.ServerName
	if serverName == "" {
		serverName = "moqt-relay"
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial number: %w", err)
	}

	dnsNames, ips := subjectAltNames(opts)

	now := time.Now()
	notBefore := now.Add(-1 * time.Minute) // slight backdate for clock skew
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: serverName},
		NotBefore:    notBefore,
		NotAfter:     notBefore.Add(validity), // total validity must be ≤14 days (Chrome enforces strictly)
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     dnsNames,
		IPAddresses:  ips,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	fingerprint := sha256.Sum256(certDER)

	return &CertInfo{
		TLSCert: tls.Certificate{
			Certificate: [][]byte{certDER},
			PrivateKey:  key,
		},
		Fingerprint: fingerprint,
		NotAfter:    template.NotAfter,
	}, nil
}

// subjectAltNames resolves opts.Addr/ExtraHosts into DNS-name/IP-address
// SAN lists, always including localhost/loopback so a Dialer pointed at
// 127.0.0.1 validates even when Addr or ExtraHosts name something else.
func subjectAltNames(opts Options) ([]string, []net.IP) {
	dnsNames := []string{"localhost"}
	ips := []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback}

	add := func(host string) {
		if host == "" {
			return
		}
		if ip := net.ParseIP(host); ip != nil {
			ips = append(ips, ip)
			return
		}
		dnsNames = append(dnsNames, host)
	}

	if opts.Addr != "" {
		host, _, err := net.SplitHostPort(opts.Addr)
		if err != nil {
			host = opts.Addr // no "host:port" shape; treat the whole value as a host
		}
		add(host)
	}
	for _, h := range opts.ExtraHosts {
		add(h)
	}
	return dnsNames, ips
}
