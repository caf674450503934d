package constants

// Application Information
const (
	AppName    = "Blog Service"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Authority levels attached to users
const (
	AuthorityWrite = "Write"
	AuthorityAdmin = "Admin"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix = "blog:"
	CacheKeyPosts  = CacheKeyPrefix + "posts:"
	CacheKeyUser   = CacheKeyPrefix + "user:"
)
