// Package server provides the listeners the network servers accept on.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/audiograb-server/internal/config"
	"github.com/dtroode/audiograb-server/internal/model"
)

// NewSecurityLayer returns a TLS layer when HTTPS is enabled, a plain one otherwise.
// Certificates are loaded here so that a bad key pair fails before any listener opens.
func NewSecurityLayer(cfg config.HTTP) (model.SecurityLayer, error) {
	if !cfg.EnableHTTPS {
		return NewPlainListener(), nil
	}
	return NewTLSListener(cfg.CertFileName, cfg.PrivateKeyFileName)
}

// TLSListener opens TLS listeners with a preloaded key pair.
type TLSListener struct {
	config *tls.Config
}

// NewTLSListener loads the certificate and private key files.
func NewTLSListener(certFileName, privateKeyFileName string) (*TLSListener, error) {
	cert, err := tls.LoadX509KeyPair(certFileName, privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return &TLSListener{
		config: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}, nil
}

// Listen opens a TLS listener on addr.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	return tls.Listen(protocol, addr, l.config)
}

// PlainListener opens unencrypted listeners.
type PlainListener struct{}

func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}
