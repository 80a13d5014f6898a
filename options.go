package docref

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver   string
	addrs    []string
	uri      string
	database string
	username string
	password string

	keyPrefix       string
	maxBatchSize    int
	maxResolveDepth int
	defaultPageSize int
	maxPageSize     int
}

// WithRedis connects to a Redis store. Pass an empty password for
// unauthenticated instances.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithMongo connects to a MongoDB store.
func WithMongo(uri, database string) Option {
	return func(c *clientConfig) {
		c.driver = "mongo"
		c.uri = uri
		c.database = database
	}
}

// WithAuth sets store credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithKeyPrefix namespaces all Redis keys (default "docref:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithMaxBatchSize caps batch operation size.
func WithMaxBatchSize(size int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = size
	}
}

// WithMaxResolveDepth caps reference spec nesting depth.
func WithMaxResolveDepth(depth int) Option {
	return func(c *clientConfig) {
		c.maxResolveDepth = depth
	}
}

// WithPagination configures document listing page sizes.
func WithPagination(defaultPageSize, maxPageSize int) Option {
	return func(c *clientConfig) {
		c.defaultPageSize = defaultPageSize
		c.maxPageSize = maxPageSize
	}
}
