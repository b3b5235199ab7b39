package searchable

// ConnectionInfo is what the engine needs to know about a database
// connection.
type ConnectionInfo struct {
	Driver string
	Prefix string
}

// Lookup is the configuration the engine reads at construction time.
type Lookup interface {
	DefaultConnection() string
	Connection(name string) (ConnectionInfo, bool)
}

// StaticLookup is a fixed Lookup, for callers that do not load configuration
// from files.
type StaticLookup struct {
	Default     string
	Connections map[string]ConnectionInfo
}

func (s StaticLookup) DefaultConnection() string { return s.Default }

func (s StaticLookup) Connection(name string) (ConnectionInfo, bool) {
	c, ok := s.Connections[name]
	return c, ok
}

// SingleConnection is a Lookup with one default connection using driver.
func SingleConnection(driver string) StaticLookup {
	return StaticLookup{
		Default:     "default",
		Connections: map[string]ConnectionInfo{"default": {Driver: driver}},
	}
}
