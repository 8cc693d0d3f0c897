package consul

import (
	"errors"
	"strconv"

	"github.com/lamassuiot/ocsp-mockserver/pkg/discovery"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/hashicorp/consul/api"
)

const ServiceName = "ocsp-mockserver"

var ErrNotRegistered = errors.New("service not registered")

type ServiceDiscovery struct {
	client    consulsd.Client
	logger    log.Logger
	registrar *consulsd.Registrar
}

// NewServiceDiscovery connects to the Consul agent at address, e.g.
// "http://127.0.0.1:8500".
func NewServiceDiscovery(address string, logger log.Logger) (discovery.Service, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = address
	consulClient, err := api.NewClient(consulConfig)
	if err != nil {
		level.Error(logger).Log("err", err, "msg", "Could not start Consul API Client")
		return nil, err
	}
	return newServiceDiscovery(consulsd.NewClient(consulClient), logger), nil
}

func newServiceDiscovery(client consulsd.Client, logger log.Logger) *ServiceDiscovery {
	return &ServiceDiscovery{client: client, logger: logger}
}

func (sd *ServiceDiscovery) Register(advProtocol string, advHost string, advPort string) error {
	port, err := strconv.Atoi(advPort)
	if err != nil {
		return err
	}
	check := api.AgentServiceCheck{
		HTTP:     advProtocol + "://" + advHost + ":" + advPort + "/health",
		Interval: "10s",
		Timeout:  "1s",
		Notes:    "Basic health checks",
	}
	asr := api.AgentServiceRegistration{
		ID:      ServiceName + "-" + advPort,
		Name:    ServiceName,
		Address: advHost,
		Port:    port,
		Tags:    []string{"ocsp", "auth", "mock"},
		Check:   &check,
	}
	sd.registrar = consulsd.NewRegistrar(sd.client, &asr, sd.logger)
	sd.registrar.Register()
	return nil
}

func (sd *ServiceDiscovery) Deregister() error {
	if sd.registrar == nil {
		return ErrNotRegistered
	}
	sd.registrar.Deregister()
	sd.registrar = nil
	return nil
}
