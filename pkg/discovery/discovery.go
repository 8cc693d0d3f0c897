package discovery

// Service announces the mock server to a service catalog.
type Service interface {
	Register(advProtocol string, advHost string, advPort string) error
	Deregister() error
}
