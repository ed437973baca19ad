// ABOUTME: mDNS advertisement and browsing of binaural control endpoints
// ABOUTME: Players announce _binaural._tcp so remotes can find /status and /ws
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/binaural-go/binaural/internal/version"
	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

// ServiceType is the DNS-SD service advertised by players
const ServiceType = "_binaural._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Logger      *zap.Logger
}

// Manager advertises one control endpoint
type Manager struct {
	config Config
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// PlayerInfo describes a discovered player
type PlayerInfo struct {
	Name    string
	Host    string
	Port    int
	Path    string
	Version string
}

// URL is the player's status endpoint
func (p PlayerInfo) URL() string {
	path := p.Path
	if path == "" {
		path = "/status"
	}
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(p.Host, fmt.Sprint(p.Port)), path)
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	if config.ServiceName == "" {
		config.ServiceName = DefaultName()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		config: config,
		logger: logger.Named("mdns"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// DefaultName is "<hostname>-binaural"
func DefaultName() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	return hostname + "-" + version.Product
}

// TXT returns the records published with the service
func (m *Manager) TXT() []string {
	return []string{
		"path=/status",
		"ws=/ws",
		"version=" + version.Version,
	}
}

// Advertise publishes the control endpoint until Stop is called
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.TXT(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}
	m.logger.Info("advertising control API",
		zap.String("name", m.config.ServiceName),
		zap.Int("port", m.config.Port),
		zap.String("type", ServiceType))

	go func() {
		<-m.ctx.Done()
		_ = server.Shutdown()
	}()

	return nil
}

// Stop withdraws the advertisement
func (m *Manager) Stop() {
	m.cancel()
}

// Browse queries the local network once and returns the players that
// answered within timeout.
func Browse(ctx context.Context, timeout time.Duration, logger *zap.Logger) ([]PlayerInfo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	var players []PlayerInfo
	seen := make(map[string]bool)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			p := playerFromEntry(entry)
			key := fmt.Sprintf("%s@%s:%d", p.Name, p.Host, p.Port)
			if seen[key] {
				continue
			}
			seen[key] = true
			logger.Debug("discovered player", zap.String("name", p.Name), zap.String("url", p.URL()))
			players = append(players, p)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := queryContext(ctx, params)
	close(entries)
	<-collected

	if err != nil {
		return players, fmt.Errorf("mdns query: %w", err)
	}
	return players, nil
}

func queryContext(ctx context.Context, params *mdns.QueryParam) error {
	done := make(chan error, 1)
	go func() { done <- mdns.Query(params) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// Query honours params.Timeout; wait for it so entries is not
		// written after we close it.
		<-done
		return ctx.Err()
	}
}

func playerFromEntry(entry *mdns.ServiceEntry) PlayerInfo {
	p := PlayerInfo{
		Name: instanceName(entry.Name),
		Port: entry.Port,
	}
	if entry.AddrV4 != nil {
		p.Host = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		p.Host = entry.AddrV6.String()
	} else {
		p.Host = strings.TrimSuffix(entry.Host, ".")
	}
	for _, field := range entry.InfoFields {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "path":
			p.Path = v
		case "version":
			p.Version = v
		}
	}
	return p
}

// instanceName strips the service suffix from "name._binaural._tcp.local."
func instanceName(full string) string {
	if i := strings.Index(full, "."+ServiceType); i >= 0 {
		full = full[:i]
	}
	return strings.ReplaceAll(full, `\ `, " ")
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
