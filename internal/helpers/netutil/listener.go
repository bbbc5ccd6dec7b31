package netutil

import (
	"fmt"
	"net"

	"github.com/eleven-am/searchnode/internal/domain"
)

// ListenTCP binds host:port and reports the port actually bound, which
// differs from port when port is 0. An empty host binds every interface.
func ListenTCP(host string, port int, component string) (net.Listener, int, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, 0, domain.NewNetworkError(
			fmt.Sprintf("failed to listen on %s", addr),
			err,
			domain.WithComponent(component),
			domain.WithContextDetail("address", addr),
		)
	}

	return listener, listener.Addr().(*net.TCPAddr).Port, nil
}
