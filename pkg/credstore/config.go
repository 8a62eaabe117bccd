package credstore

// Config names the storage keys and their namespace prefix. All keys end up
// as "<Namespace><key>" in the underlying store, so several SDK instances can
// share one backend without colliding.
type Config struct {
	Namespace       string `env:"FLOWGRID_STORAGE_NAMESPACE" envDefault:"flowgrid_" yaml:"namespace"`
	AccessTokenKey  string `env:"FLOWGRID_STORAGE_TOKEN_KEY" envDefault:"auth_token" yaml:"access_token_key"`
	RefreshTokenKey string `env:"FLOWGRID_STORAGE_REFRESH_KEY" envDefault:"refresh_token" yaml:"refresh_token_key"`
	UserKey         string `env:"FLOWGRID_STORAGE_USER_KEY" envDefault:"user_data" yaml:"user_key"`
}

// DefaultConfig returns the key names used when no environment overrides are set.
func DefaultConfig() Config {
	return Config{
		Namespace:       "flowgrid_",
		AccessTokenKey:  "auth_token",
		RefreshTokenKey: "refresh_token",
		UserKey:         "user_data",
	}
}
