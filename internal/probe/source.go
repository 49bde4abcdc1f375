// Package probe implements the producer side of the telemetry link: it
// reads WiFi station statistics over nl80211 and sends them to the display
// daemon's socket as 24-byte datagrams on a fixed heartbeat.
//
// This file defines the station statistics source.
package probe

import (
	"bytes"
	"fmt"
	"net"

	"github.com/mdlayher/wifi"

	"github.com/xtxerr/qosmon/internal/errors"
)

// StationStats is one reading of the link to a peer station.
type StationStats struct {
	RSSIdBm int32
	TxOK    uint32
	TxRetry uint32
	TxFail  uint32
}

// StationSource produces link statistics readings.
type StationSource interface {
	ReadStats() (StationStats, error)
}

// =============================================================================
// nl80211 Source
// =============================================================================

// WifiSource reads station statistics for one WiFi interface over nl80211.
//
// The peer station is resolved once at construction, like the collector
// tools that came before it: an explicit MAC wins, otherwise the associated
// access point's BSSID is used. Interfaces not in station mode have no
// associated BSS and need the peer passed explicitly.
type WifiSource struct {
	client *wifi.Client
	ifi    *wifi.Interface
	peer   net.HardwareAddr
}

// NewWifiSource opens nl80211 and resolves the interface and peer station.
// peerMAC is a textual MAC address, or "" to use the associated BSSID.
// All failures here are startup fatal for the probe.
func NewWifiSource(iface, peerMAC string) (*WifiSource, error) {
	client, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("open nl80211: %w", err)
	}

	ifi, err := findInterface(client, iface)
	if err != nil {
		client.Close()
		return nil, err
	}

	var peer net.HardwareAddr
	if peerMAC != "" {
		peer, err = net.ParseMAC(peerMAC)
		if err != nil {
			client.Close()
			return nil, errors.NewValidation("peer", fmt.Sprintf("bad MAC %q", peerMAC))
		}
	} else {
		bss, err := client.BSS(ifi)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("resolve peer for %s (not associated? pass a peer MAC): %w", iface, err)
		}
		peer = bss.BSSID
	}

	return &WifiSource{client: client, ifi: ifi, peer: peer}, nil
}

func findInterface(client *wifi.Client, name string) (*wifi.Interface, error) {
	ifis, err := client.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list WiFi interfaces: %w", err)
	}

	for _, ifi := range ifis {
		if ifi.Name == name {
			return ifi, nil
		}
	}
	return nil, fmt.Errorf("WiFi interface %q not found", name)
}

// ReadStats fetches current statistics for the peer station. Failures wrap
// ErrNoStation and are transient: the station can drop off between
// heartbeats without killing the probe.
func (s *WifiSource) ReadStats() (StationStats, error) {
	stations, err := s.client.StationInfo(s.ifi)
	if err != nil {
		return StationStats{}, fmt.Errorf("%w: %s: %v", errors.ErrNoStation, s.ifi.Name, err)
	}

	for _, st := range stations {
		if bytes.Equal(st.HardwareAddr, s.peer) {
			return StationStats{
				RSSIdBm: int32(st.Signal),
				TxOK:    uint32(st.TransmittedPackets),
				TxRetry: uint32(st.TransmitRetries),
				TxFail:  uint32(st.TransmitFailed),
			}, nil
		}
	}

	return StationStats{}, fmt.Errorf("%w: station %s not on %s", errors.ErrNoStation, s.peer, s.ifi.Name)
}

// Interface returns the resolved interface name.
func (s *WifiSource) Interface() string {
	return s.ifi.Name
}

// Peer returns the resolved peer station address.
func (s *WifiSource) Peer() net.HardwareAddr {
	return s.peer
}

// Close releases the netlink socket.
func (s *WifiSource) Close() error {
	return s.client.Close()
}
