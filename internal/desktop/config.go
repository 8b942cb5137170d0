package desktop

type Config struct {
	// OS selects the platform launchers; runtime.GOOS when empty.
	OS string
}
