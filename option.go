package routelog

// Option defines the per-handler option registered with a route.
type Option struct {
	Name   string
	Ignore bool
	Tables []string
}

// GetName returns the name from the option.
func (o Option) GetName() string {
	if o.Name != "" {
		return o.Name
	}

	return "Noname"
}

// OptionFn defines the option function prototype.
type OptionFn func(option *Option)

// OptionFns defines the slice of OptionFns.
type OptionFns []OptionFn

// CreateOption returns the option after functions call.
func (fns OptionFns) CreateOption() *Option {
	option := &Option{}

	for _, fn := range fns {
		fn(option)
	}

	return option
}

// Name defines the descriptive name of the handler.
func Name(name string) OptionFn { return func(option *Option) { option.Name = name } }

// Ignore tells the current handler should be passed through without logging,
// even when its path matches the routes to log.
func Ignore(ignore bool) OptionFn { return func(option *Option) { option.Ignore = ignore } }

// Tables sets the tables SQLStore writes the handler's records to.
func Tables(tables ...string) OptionFn { return func(option *Option) { option.Tables = tables } }

// Config defines the dispatcher configuration.
type Config struct {
	Store    Store
	Mode     MatchMode
	Resolver Resolver
}

// ConfigFn defines the dispatcher configuration function prototype.
type ConfigFn func(c *Config)

// WithStore sets where the records go. Defaults to a LogrusStore.
func WithStore(store Store) ConfigFn { return func(c *Config) { c.Store = store } }

// WithMatchMode sets how the routes to log are matched. Defaults to MatchContains.
func WithMatchMode(mode MatchMode) ConfigFn { return func(c *Config) { c.Mode = mode } }

// WithResolver sets the fallback used to identify handlers not registered with the dispatcher.
func WithResolver(resolver Resolver) ConfigFn { return func(c *Config) { c.Resolver = resolver } }

func createConfig(fns []ConfigFn) *Config {
	c := &Config{}

	for _, fn := range fns {
		fn(c)
	}

	if c.Store == nil {
		c.Store = NewLogrusStore()
	}

	return c
}
