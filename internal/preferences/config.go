package preferences

type Config struct {
	// Path of the preferences file; ~/.pm/config.json when empty.
	Path string
}
