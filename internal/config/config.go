package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `toml:"server" mapstructure:"server"`
	Convert    ConvertConfig    `toml:"convert" mapstructure:"convert"`
	Transcript TranscriptConfig `toml:"transcript" mapstructure:"transcript"`
	Network    NetworkConfig    `toml:"network" mapstructure:"network"`
	Logging    LoggingConfig    `toml:"logging" mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int      `toml:"port" mapstructure:"port"`
	AllowedOrigins []string `toml:"allowed_origins" mapstructure:"allowed_origins"`
}

type ConvertConfig struct {
	MaxUploadMB int `toml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

type TranscriptConfig struct {
	Languages           []string `toml:"languages" mapstructure:"languages"`
	MinTextLength       int      `toml:"min_text_length" mapstructure:"min_text_length"`
	BlockedFingerprints []string `toml:"blocked_fingerprints" mapstructure:"blocked_fingerprints"`
	CooldownBase        int      `toml:"cooldown_base" mapstructure:"cooldown_base"`
	CooldownCap         int      `toml:"cooldown_cap" mapstructure:"cooldown_cap"`
	CooldownReset       int      `toml:"cooldown_reset" mapstructure:"cooldown_reset"`
	RequestTimeout      int      `toml:"request_timeout" mapstructure:"request_timeout"`
	YtDlpPath           string   `toml:"ytdlp_path" mapstructure:"ytdlp_path"`
	PlayerClient        string   `toml:"player_client" mapstructure:"player_client"`
	BaseURL             string   `toml:"base_url" mapstructure:"base_url"`
}

type NetworkConfig struct {
	Timeout       int    `toml:"timeout" mapstructure:"timeout"`
	UserAgent     string `toml:"user_agent" mapstructure:"user_agent"`
	BrowserAgent  string `toml:"browser_agent" mapstructure:"browser_agent"`
	RenderJS      string `toml:"render_js" mapstructure:"render_js"`
	CookieBrowser string `toml:"cookie_browser" mapstructure:"cookie_browser"`
}

type LoggingConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8490,
			AllowedOrigins: []string{"*"},
		},
		Convert: ConvertConfig{
			MaxUploadMB: 32,
		},
		Transcript: TranscriptConfig{
			Languages:     []string{"en"},
			MinTextLength: 200,
			BlockedFingerprints: []string{
				"sign in to confirm you're not a bot",
				"our systems have detected unusual traffic",
			},
			CooldownBase:   5,
			CooldownCap:    300,
			CooldownReset:  900,
			RequestTimeout: 60,
			YtDlpPath:      "yt-dlp",
			PlayerClient:   "android",
			BaseURL:        "",
		},
		Network: NetworkConfig{
			Timeout:       30,
			UserAgent:     "",
			BrowserAgent:  "auto",
			RenderJS:      "auto",
			CookieBrowser: "",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return cfg, fmt.Errorf("error finding home directory: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}

		configDir := filepath.Join(configHome, "markdownd")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return cfg, fmt.Errorf("error creating config directory: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MARKDOWND")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

func (c *Config) CreateExampleConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	exampleContent := `# markdownd configuration file

[server]
port = 8490
allowed_origins = ["*"]   # CORS origins for the HTTP API

[convert]
max_upload_mb = 32        # Reject file uploads larger than this

[transcript]
# Preferred caption languages, in order
languages = ["en"]

# Reject transcripts shorter than this many characters
min_text_length = 200

# Case-insensitive substrings that mark a bot-check page instead of a transcript
blocked_fingerprints = [
    "sign in to confirm you're not a bot",
    "our systems have detected unusual traffic",
]

# Rate-limit cooldown backoff (seconds)
cooldown_base = 5         # first delay after a rate limit
cooldown_cap = 300        # maximum delay
cooldown_reset = 900      # quiet period that clears the backoff counter

request_timeout = 60      # overall deadline per extraction request (seconds)

ytdlp_path = "yt-dlp"     # external downloader binary
player_client = "android" # extractor client passed to yt-dlp
base_url = ""             # override the caption endpoint (for testing)

[network]
timeout = 30              # page fetch timeout (seconds)
user_agent = ""           # custom user agent (empty = rotate browser agents)
browser_agent = "auto"    # auto, chrome, firefox, safari, edge
render_js = "auto"        # auto, static, javascript
cookie_browser = ""       # browser profile to read cookies from (empty = off)

[logging]
level = "info"            # debug, info, warn, error
`

	return os.WriteFile(configPath, []byte(exampleContent), 0644)
}
