package tool

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// BuildUploadURL joins the parsing-service base URL and upload path.
func BuildUploadURL(baseURL, uploadPath string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + uploadPath)
	if err != nil {
		return "", fmt.Errorf("failed to parse upload URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in upload URL", u.Scheme)
	}
	return u.String(), nil
}

// BuildDashboardURL is the candidate table address other devices on the LAN can open.
func BuildDashboardURL(host string, port int) string {
	if host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/api/candidates/v1", host, port)
}

// HostOf returns the host part of a URL without port.
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %v", rawURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}
	return u.Hostname(), nil
}

// dialAddr returns host:port for rawURL, filling the scheme default port.
func dialAddr(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
