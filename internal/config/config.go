package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
)

//go:embed defaults.yaml
var EmbeddedConfigYAML []byte

type AlgodSettings struct {
	Server  string
	Port    string
	Token   string
	Network string
}

type ClientSettings struct {
	PinBackendURL string
	CodespaceName string
	Mnemonic      string
	KeystorePath  string
	Timeout       time.Duration
	WaitRounds    uint64
	ExplorerURL   string
}

type AssetSettings struct {
	USDCAssetID  uint64
	USDCDecimals uint32
}

type ServerSettings struct {
	Host                  string
	Port                  string
	AllowedOrigins        []string
	PreviewDomainSuffixes []string
	MaxUploadBytes        int64
	RateLimitRPS          float64
	RateLimitBurst        int
}

type PinningSettings struct {
	Backend             string
	JWT                 string
	APIKey              string
	APISecret           string
	BaseURL             string
	LocalDir            string
	ImageName           string
	MetadataName        string
	MetadataTitle       string
	MetadataDescription string
	Timeout             time.Duration
}

type Config struct {
	Algod   *AlgodSettings
	Client  *ClientSettings
	Assets  *AssetSettings
	Server  *ServerSettings
	Pinning *PinningSettings
}

// environment variables layered over the YAML keys
var envBindings = map[string][]string{
	"algod.server":                 {"ALGOD_SERVER", "VITE_ALGOD_SERVER"},
	"algod.port":                   {"ALGOD_PORT", "VITE_ALGOD_PORT"},
	"algod.token":                  {"ALGOD_TOKEN", "VITE_ALGOD_TOKEN"},
	"algod.network":                {"ALGOD_NETWORK", "VITE_ALGOD_NETWORK"},
	"client.pinbackendurl":         {"PIN_API_URL", "VITE_API_URL"},
	"client.codespacename":         {"CODESPACE_NAME"},
	"client.mnemonic":              {"ALGO_MNEMONIC"},
	"client.keystorepath":          {"ALGO_KEYSTORE"},
	"client.timeout":               {"CLIENT_TIMEOUT"},
	"client.waitrounds":            {"WAIT_ROUNDS"},
	"client.explorerurl":           {"EXPLORER_URL"},
	"assets.usdcassetid":           {"USDC_ASSET_ID"},
	"assets.usdcdecimals":          {"USDC_DECIMALS"},
	"server.host":                  {"PIN_SERVER_HOST"},
	"server.port":                  {"PORT"},
	"server.allowedorigins":        {"ALLOWED_ORIGINS"},
	"server.previewdomainsuffixes": {"PREVIEW_DOMAIN_SUFFIXES"},
	"server.maxuploadbytes":        {"MAX_UPLOAD_BYTES"},
	"server.ratelimitrps":          {"RATE_LIMIT_RPS"},
	"server.ratelimitburst":        {"RATE_LIMIT_BURST"},
	"pinning.backend":              {"PIN_BACKEND"},
	"pinning.jwt":                  {"PINATA_JWT"},
	"pinning.apikey":               {"PINATA_API_KEY"},
	"pinning.apisecret":            {"PINATA_API_SECRET"},
	"pinning.baseurl":              {"PINATA_BASE_URL"},
	"pinning.localdir":             {"PIN_LOCAL_DIR"},
	"pinning.imagename":            {"PIN_IMAGE_NAME"},
	"pinning.metadataname":         {"PIN_METADATA_NAME"},
	"pinning.metadatatitle":        {"NFT_METADATA_NAME"},
	"pinning.metadatadescription":  {"NFT_METADATA_DESCRIPTION"},
	"pinning.timeout":              {"PIN_TIMEOUT"},
}

// DefaultPaths lists the directories searched for quickstart.yaml.
func DefaultPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}
}

// Load layers the embedded defaults, an optional quickstart.yaml found in
// paths, a .env file in the working directory and the process environment.
// Later layers win.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "config: load .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, errors.Wrap(err, "config: read embedded defaults")
	}

	if len(paths) > 0 {
		v.SetConfigName(constants.ConfigFileName)
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrapf(err, "config: read %s", constants.ConfigFileName)
			}
		}
	}

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, errors.Wrapf(err, "config: bind %s", key)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Algod: &AlgodSettings{
			Server:  strings.TrimSpace(v.GetString("algod.server")),
			Port:    strings.TrimSpace(v.GetString("algod.port")),
			Token:   strings.TrimSpace(v.GetString("algod.token")),
			Network: strings.ToLower(strings.TrimSpace(v.GetString("algod.network"))),
		},
		Client: &ClientSettings{
			PinBackendURL: strings.TrimSpace(v.GetString("client.pinbackendurl")),
			CodespaceName: strings.TrimSpace(v.GetString("client.codespacename")),
			Mnemonic:      strings.TrimSpace(v.GetString("client.mnemonic")),
			KeystorePath:  strings.TrimSpace(v.GetString("client.keystorepath")),
			Timeout:       v.GetDuration("client.timeout"),
			WaitRounds:    v.GetUint64("client.waitrounds"),
			ExplorerURL:   strings.TrimRight(strings.TrimSpace(v.GetString("client.explorerurl")), "/"),
		},
		Assets: &AssetSettings{
			USDCAssetID:  v.GetUint64("assets.usdcassetid"),
			USDCDecimals: v.GetUint32("assets.usdcdecimals"),
		},
		Server: &ServerSettings{
			Host:                  strings.TrimSpace(v.GetString("server.host")),
			Port:                  strings.TrimSpace(v.GetString("server.port")),
			AllowedOrigins:        listValue(v, "server.allowedorigins"),
			PreviewDomainSuffixes: listValue(v, "server.previewdomainsuffixes"),
			MaxUploadBytes:        v.GetInt64("server.maxuploadbytes"),
			RateLimitRPS:          v.GetFloat64("server.ratelimitrps"),
			RateLimitBurst:        v.GetInt("server.ratelimitburst"),
		},
		Pinning: &PinningSettings{
			Backend:             strings.ToLower(strings.TrimSpace(v.GetString("pinning.backend"))),
			JWT:                 strings.TrimSpace(v.GetString("pinning.jwt")),
			APIKey:              strings.TrimSpace(v.GetString("pinning.apikey")),
			APISecret:           strings.TrimSpace(v.GetString("pinning.apisecret")),
			BaseURL:             strings.TrimRight(strings.TrimSpace(v.GetString("pinning.baseurl")), "/"),
			LocalDir:            strings.TrimSpace(v.GetString("pinning.localdir")),
			ImageName:           v.GetString("pinning.imagename"),
			MetadataName:        v.GetString("pinning.metadataname"),
			MetadataTitle:       v.GetString("pinning.metadatatitle"),
			MetadataDescription: v.GetString("pinning.metadatadescription"),
			Timeout:             v.GetDuration("pinning.timeout"),
		},
	}
}

// listValue accepts both a YAML sequence and a comma separated string, the
// latter being how ALLOWED_ORIGINS arrives from the environment.
func listValue(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return SplitList(s)
	}
	return SplitList(strings.Join(v.GetStringSlice(key), ","))
}

func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Config) Validate() error {
	if c.Algod.Server == "" {
		return errors.New("config: algod server is empty")
	}
	if c.Algod.Network == "" {
		c.Algod.Network = constants.DefaultNetwork
	}
	if c.Client.Timeout <= 0 {
		return errors.Newf("config: client timeout must be positive, got %s", c.Client.Timeout)
	}
	if c.Client.WaitRounds == 0 {
		return errors.New("config: wait rounds must be positive")
	}
	if c.Assets.USDCAssetID == 0 {
		return errors.New("config: usdc asset id is empty")
	}
	if c.Assets.USDCDecimals > constants.MaxDecimals {
		return errors.Newf("config: usdc decimals %d above %d", c.Assets.USDCDecimals, constants.MaxDecimals)
	}
	if c.Server.Port == "" {
		c.Server.Port = constants.DefaultPinServerPort
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("config: max upload bytes must be positive")
	}
	if c.Pinning.Timeout <= 0 {
		return errors.Newf("config: pin timeout must be positive, got %s", c.Pinning.Timeout)
	}

	switch c.Pinning.Backend {
	case PinBackendPinata, PinBackendLocal, PinBackendMemory:
	default:
		return errors.Newf("config: invalid pin backend %q (allowed: pinata, local, memory)", c.Pinning.Backend)
	}
	if c.Pinning.Backend == PinBackendLocal && c.Pinning.LocalDir == "" {
		return errors.New("config: local pin backend needs PIN_LOCAL_DIR")
	}
	if (c.Pinning.APIKey == "") != (c.Pinning.APISecret == "") {
		return errors.New("config: PINATA_API_KEY and PINATA_API_SECRET must be set together")
	}
	return nil
}

const (
	PinBackendPinata = "pinata"
	PinBackendLocal  = "local"
	PinBackendMemory = "memory"
)

// HasPinataCredentials reports whether JWT or key/secret auth is configured.
func (p *PinningSettings) HasPinataCredentials() bool {
	return p.JWT != "" || (p.APIKey != "" && p.APISecret != "")
}

// AlgodAddress joins server and port the way algod clients expect.
func (a *AlgodSettings) AlgodAddress() string {
	if a.Port == "" {
		return a.Server
	}
	return strings.TrimRight(a.Server, "/") + ":" + a.Port
}
