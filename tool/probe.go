package tool

import (
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

var icmpProbeTimeout = 800 * time.Millisecond

// QuickICMPProbe sends one unprivileged echo and reports whether a reply came back.
func QuickICMPProbe(host string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = icmpProbeTimeout
	}
	pinger, err := probing.NewPinger(host)
	if err != nil {
		DefaultLogger.Debugf("QuickICMPProbe: failed to create pinger for %s: %v", host, err)
		return false
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(false)
	if err := pinger.Run(); err != nil {
		DefaultLogger.Debugf("QuickICMPProbe: ping %s failed: %v", host, err)
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

// ProbeResult describes whether the parsing service looks reachable.
type ProbeResult struct {
	Host      string `json:"host"`
	ICMP      bool   `json:"icmp"`
	TCP       bool   `json:"tcp"`
	Reachable bool   `json:"reachable"`
}

// ProbeParser checks the host of baseURL with ICMP and a TCP dial.
// ICMP is informational; reachability is decided by the TCP dial.
func ProbeParser(baseURL string, timeout time.Duration) (ProbeResult, error) {
	if timeout <= 0 {
		timeout = icmpProbeTimeout
	}
	host, err := HostOf(baseURL)
	if err != nil {
		return ProbeResult{}, err
	}
	res := ProbeResult{Host: host}
	res.ICMP = QuickICMPProbe(host, timeout)

	addr, err := dialAddr(baseURL)
	if err == nil {
		conn, dialErr := net.DialTimeout("tcp", addr, timeout)
		if dialErr == nil {
			res.TCP = true
			if closeErr := conn.Close(); closeErr != nil {
				DefaultLogger.Debugf("ProbeParser: close: %v", closeErr)
			}
		}
	}
	res.Reachable = res.TCP
	return res, nil
}
