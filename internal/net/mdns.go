package net

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_annotate._tcp"

var ErrNoStoreFound = errors.New("no annotation store found on the local network")

// Advertise announces a store listening on port. Close the returned server to
// stop announcing.
func Advertise(port int) (io.Closer, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"AnnotateBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %s on port %d", serviceType, port)
	return shutdownCloser{server}, nil
}

type shutdownCloser struct{ s *mdns.Server }

func (c shutdownCloser) Close() error { return c.s.Shutdown() }

// Discover browses for a store and returns the endpoint URL of the first one
// that answers within timeout.
func Discover(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- EndpointURL(e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return "", fmt.Errorf("mdns query: %w", err)
	}

	select {
	case url := <-found:
		log.Printf("[MDNS] Found store at %s", url)
		return url, nil
	default:
		return "", ErrNoStoreFound
	}
}
