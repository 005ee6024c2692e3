package interfaces

// -----------------------------------------------------------------------------
// IProxyManager defines the contract for managing and rotating proxies.
// -----------------------------------------------------------------------------

type IProxyManager interface {
	GetCurrentProxy() (string, error)
	RotateProxy()
	HasProxies() bool
	GetUserAgent() string
}
