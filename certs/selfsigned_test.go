package certs

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"net"
	"testing"
	"time"

	"github.com/moqtail/moqt-go/transport"
)

func TestGenerateDefaultOptions(t *testing.T) {
	t.Parallel()
	cert, err := Generate(Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(cert.TLSCert.Certificate) == 0 {
		t.Fatal("no certificate data")
	}

	x509Cert, err := x509.ParseCertificate(cert.TLSCert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse cert: %v", err)
	}

	if x509Cert.Subject.CommonName != "moqt-relay" {
		t.Errorf("CommonName = %q, want default %q", x509Cert.Subject.CommonName, "moqt-relay")
	}

	validity := x509Cert.NotAfter.Sub(x509Cert.NotBefore)
	if validity > maxValidity+2*time.Minute {
		t.Errorf("validity too long: %v", validity)
	}
	if x509Cert.NotAfter.Before(time.Now()) {
		t.Error("cert is already expired")
	}

	expectedFingerprint := sha256.Sum256(cert.TLSCert.Certificate[0])
	if cert.Fingerprint != expectedFingerprint {
		t.Error("fingerprint mismatch")
	}
	if cert.FingerprintBase64() == "" {
		t.Error("FingerprintBase64 returned empty string")
	}

	found := false
	for _, name := range x509Cert.DNSNames {
		if name == "localhost" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected localhost in DNS names")
	}
}

func TestGenerateValidityCapped(t *testing.T) {
	t.Parallel()
	cert, err := Generate(Options{Validity: 30 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	x509Cert, err := x509.ParseCertificate(cert.TLSCert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse cert: %v", err)
	}

	validity := x509Cert.NotAfter.Sub(x509Cert.NotBefore)
	if validity > maxValidity+2*time.Minute {
		t.Errorf("validity should be capped at %v, got: %v", maxValidity, validity)
	}
}

func TestGenerateAddrAndExtraHostsBecomeSANs(t *testing.T) {
	t.Parallel()
	cert, err := Generate(Options{
		ServerName: "relay.internal",
		Addr:       "203.0.113.7:4433",
		ExtraHosts: []string{"relay.example.org", "198.51.100.9"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	x509Cert, err := x509.ParseCertificate(cert.TLSCert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse cert: %v", err)
	}

	if x509Cert.Subject.CommonName != "relay.internal" {
		t.Errorf("CommonName = %q, want %q", x509Cert.Subject.CommonName, "relay.internal")
	}

	wantDNS := "relay.example.org"
	gotDNS := false
	for _, name := range x509Cert.DNSNames {
		if name == wantDNS {
			gotDNS = true
		}
	}
	if !gotDNS {
		t.Errorf("DNSNames %v missing %q", x509Cert.DNSNames, wantDNS)
	}

	wantIPs := []net.IP{net.ParseIP("203.0.113.7"), net.ParseIP("198.51.100.9")}
	for _, want := range wantIPs {
		gotIP := false
		for _, ip := range x509Cert.IPAddresses {
			if ip.Equal(want) {
				gotIP = true
			}
		}
		if !gotIP {
			t.Errorf("IPAddresses %v missing %v", x509Cert.IPAddresses, want)
		}
	}
}

// TestCertPlugsIntoTransportServer asserts the generated certificate is
// accepted as-is by transport.Server's TLSConfig, the way
// cmd/moqt-demo/main.go wires one up for runServer.
func TestCertPlugsIntoTransportServer(t *testing.T) {
	t.Parallel()
	cert, err := Generate(Options{ServerName: "moqt-demo", Addr: "127.0.0.1:4433"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	srv := &transport.Server{
		Addr:      "127.0.0.1:4433",
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert.TLSCert}},
	}

	if len(srv.TLSConfig.Certificates) != 1 {
		t.Fatalf("TLSConfig has %d certificates, want 1", len(srv.TLSConfig.Certificates))
	}
	got := srv.TLSConfig.Certificates[0]
	if len(got.Certificate) == 0 || got.PrivateKey == nil {
		t.Fatal("transport.Server.TLSConfig certificate is incomplete")
	}

	// GetCertificate-style lookup a QUIC handshake performs: the leaf must
	// parse back out of what srv.TLSConfig now holds.
	leaf, err := x509.ParseCertificate(got.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse cert from srv.TLSConfig: %v", err)
	}
	if leaf.Subject.CommonName != "moqt-demo" {
		t.Errorf("CommonName = %q, want %q", leaf.Subject.CommonName, "moqt-demo")
	}
}
