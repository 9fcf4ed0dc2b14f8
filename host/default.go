package host

// Default returns the host this build links against.
func Default() Host {
	return platform
}

// DefaultTransit wraps Default.
func DefaultTransit() *Transit {
	return NewTransit(platform)
}
