package net

import (
	"errors"
	"fmt"
	"log"
	"net"
)

var ErrNoLANAddress = errors.New("no LAN address found")

// LANAddress returns the IPv4 address boards on the local network reach this
// machine at: the source address of the default route, else the first address
// of an up, non-loopback interface.
func LANAddress() (net.IP, error) {
	if ip := routeAddress(); ip != nil {
		return ip, nil
	}
	return interfaceAddress()
}

// routeAddress asks the kernel which source address it would use. Dialing UDP
// only picks a route; no packet is sent.
func routeAddress() net.IP {
	conn, err := net.Dial("udp4", "192.0.2.1:9")
	if err != nil {
		return nil
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.IsLoopback() || addr.IP.IsUnspecified() {
		return nil
	}
	return addr.IP.To4()
}

func interfaceAddress() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLinkLocalUnicast() {
				return ip4, nil
			}
		}
	}
	return nil, ErrNoLANAddress
}

// EndpointURL is the annotation endpoint of a store at host listening on port.
func EndpointURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d%s", host, port, AnnotatePath)
}

// ShareURL is the endpoint to hand to boards on other machines. Without a LAN
// address it falls back to loopback, which still serves boards on this machine.
func ShareURL(port int) string {
	ip, err := LANAddress()
	if err != nil {
		log.Printf("[NET] %v, sharing loopback", err)
		return EndpointURL("127.0.0.1", port)
	}
	return EndpointURL(ip.String(), port)
}
