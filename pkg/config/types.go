package config

type LogEnv string

const (
	LogEnvDev  LogEnv = "dev"
	LogEnvProd LogEnv = "prod"
)

type Config struct {
	Title     string          `toml:"title"`
	Log       LogConfig       `toml:"log"`
	Devtools  DevtoolsConfig  `toml:"devtools"`
	Todo      TodoConfig      `toml:"todo"`
	Followers FollowersConfig `toml:"followers"`
}

type LogConfig struct {
	Env   LogEnv `toml:"env"`
	Level string `toml:"level"`
}

type DevtoolsConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	Path         string   `toml:"path"`
	AllowOrigins []string `toml:"allowOrigins"`
}

type TodoConfig struct {
	// SeedFile is a markdown checklist imported when the todo command starts.
	SeedFile string `toml:"seedFile"`
}

type FollowersConfig struct {
	Fixture string `toml:"fixture"`
	// Timeout bounds a single fetch, in seconds.
	Timeout int `toml:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Title: "Quasar",
		Log: LogConfig{
			Env:   LogEnvDev,
			Level: "info",
		},
		Devtools: DevtoolsConfig{
			Host:         "localhost",
			Port:         4323,
			Path:         "/__quasar",
			AllowOrigins: []string{},
		},
		Followers: FollowersConfig{
			Fixture: "./followers.json",
			Timeout: 10,
		},
	}
}
