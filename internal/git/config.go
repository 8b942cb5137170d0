package git

type Config struct {
	Binary       string
	FallbackUser string
}
