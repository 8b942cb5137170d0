package openapifx

type Config struct {
	Enabled bool

	// PublicHost overrides the host advertised in the document.
	PublicHost string
	// PublicPath overrides the base path, for deployments behind a prefix.
	PublicPath string
}
