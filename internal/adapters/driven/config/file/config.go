package file

import (
	"fmt"
	"time"
)

// Config is the complete replicator configuration.
type Config struct {
	Log              LogConfig                `toml:"log"`
	Storage          StorageConfig            `toml:"storage"`
	Content          ContentConfig            `toml:"content"`
	Render           RenderConfig             `toml:"render"`
	Agent            AgentConfig              `toml:"agent"`
	Server           ServerConfig             `toml:"server"`
	Instances        []InstanceConfig         `toml:"instances" validate:"unique=ID,dive"`
	TokenProviders   []TokenProviderConfig    `toml:"token_providers" validate:"dive"`
	Builders         BuildersConfig           `toml:"builders"`
	FolderAttributes []FolderAttributesConfig `toml:"folder_attributes" validate:"unique=ID,dive"`
	Transports       TransportsConfig         `toml:"transports"`
}

// LogConfig controls process logging.
type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

// StorageConfig selects where tokens and history are kept.
type StorageConfig struct {
	// Driver is "sqlite" (default) or "memory".
	Driver  string `toml:"driver" validate:"omitempty,oneof=sqlite memory"`
	DataDir string `toml:"data_dir"`
	// KeyFile holds the token encryption key. Defaults to <data_dir>/token.key.
	KeyFile string `toml:"key_file"`
	// SpoolDir receives temporary delivery files. Defaults to the system temp dir.
	SpoolDir string `toml:"spool_dir"`
}

// ContentConfig locates the exported CMS content tree.
type ContentConfig struct {
	Tree string `toml:"tree"`
}

// RenderConfig locates the CMS render endpoint.
type RenderConfig struct {
	BaseURL  string   `toml:"base_url" validate:"omitempty,url"`
	User     string   `toml:"user"`
	Password string   `toml:"password"`
	Timeout  Duration `toml:"timeout"`
}

// AgentConfig is the replication agent the actions run under.
type AgentConfig struct {
	Name         string   `toml:"name"`
	TransportURI string   `toml:"transport_uri" validate:"required"`
	UserID       string   `toml:"user_id"`
	OAuth        bool     `toml:"oauth"`
	Headers      []string `toml:"headers"`
}

// ServerConfig configures the HTTP trigger surface.
type ServerConfig struct {
	Listen       string   `toml:"listen" validate:"omitempty,hostname_port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// InstanceConfig is one commerce instance.
type InstanceConfig struct {
	ID                string        `toml:"id" validate:"required"`
	Endpoint          string        `toml:"endpoint" validate:"required"`
	Scheme            string        `toml:"scheme" validate:"omitempty,oneof=http https"`
	ConnectTimeout    Duration      `toml:"connect_timeout"`
	SocketTimeout     Duration      `toml:"socket_timeout"`
	Interface         string        `toml:"interface"`
	SSL               string        `toml:"ssl" validate:"omitempty,oneof=TLSv1.2 TLSv1.3"`
	KeystoreType      string        `toml:"keystore_type" validate:"omitempty,oneof=pkcs12 pem"`
	KeystorePath      string        `toml:"keystore_path" validate:"required_with=KeystoreType"`
	KeystorePassword  string        `toml:"keystore_password"`
	KeyPath           string        `toml:"key_path"`
	KeyPassword       string        `toml:"key_password"`
	RequestsPerSecond float64       `toml:"requests_per_second" validate:"gte=0"`
	Burst             int           `toml:"burst" validate:"gte=0"`
	Preview           PreviewConfig `toml:"preview"`
}

// PreviewConfig is the storefront preview of an instance.
type PreviewConfig struct {
	PageEndpoint        string   `toml:"page_endpoint"`
	SearchEndpoint      string   `toml:"search_endpoint"`
	Template            string   `toml:"template"`
	DefaultSite         string   `toml:"default_site"`
	CacheEnabled        bool     `toml:"cache_enabled"`
	CacheTime           Duration `toml:"cache_time"`
	StorefrontProtected bool     `toml:"storefront_protected"`
	StorefrontUser      string   `toml:"storefront_user"`
	StorefrontPassword  string   `toml:"storefront_password"`
}

// TokenProviderConfig is one OAuth client registered for an instance.
type TokenProviderConfig struct {
	ClientID     string   `toml:"client_id" validate:"required"`
	ClientSecret string   `toml:"client_secret"`
	InstanceID   string   `toml:"instance_id" validate:"required"`
	Endpoint     string   `toml:"endpoint"`
	TokenURL     string   `toml:"token_url" validate:"omitempty,url,startswith=https://"`
	GrantType    string   `toml:"grant_type"`
	Rank         int      `toml:"rank"`
	Scopes       []string `toml:"scopes"`
	Leeway       Duration `toml:"leeway"`
}

// BuildersConfig holds the per-plugin builder settings.
type BuildersConfig struct {
	ContentAsset      ContentAssetConfig      `toml:"content_asset"`
	ContentAssetBody  ContentAssetBodyConfig  `toml:"content_asset_body"`
	ContentSlot       ContentSlotConfig       `toml:"content_slot"`
	DAMAsset          DAMAssetConfig          `toml:"dam_asset"`
	RenderingTemplate RenderingTemplateConfig `toml:"rendering_template"`
}

// PluginConfig is shared by every builder section.
type PluginConfig struct {
	Disabled bool `toml:"disabled"`
	// Rank overrides the built-in order when non-zero.
	Rank int `toml:"rank"`
}

// ContentAssetConfig configures the content asset builder.
type ContentAssetConfig struct {
	PluginConfig
	ResourceTypes    []string `toml:"resource_types"`
	IgnoredTypes     []string `toml:"ignored_types"`
	API              string   `toml:"api"`
	AttributeMapping []string `toml:"attribute_mapping"`
	DefaultLibrary   string   `toml:"default_library"`
	DefaultTemplate  string   `toml:"default_template"`
}

// ContentAssetBodyConfig configures the content asset body builder.
type ContentAssetBodyConfig struct {
	PluginConfig
	ResourceTypes []string `toml:"resource_types"`
	IgnoredTypes  []string `toml:"ignored_types"`
	ParsysTypes   []string `toml:"parsys_types"`
}

// ContentSlotConfig configures the content slot builder.
type ContentSlotConfig struct {
	PluginConfig
	ResourceTypes []string `toml:"resource_types"`
	IgnoredTypes  []string `toml:"ignored_types"`
	API           string   `toml:"api"`
}

// DAMAssetConfig configures the DAM asset builder.
type DAMAssetConfig struct {
	PluginConfig
	Endpoint  string `toml:"endpoint"`
	Rendition string `toml:"rendition"`
	Library   string `toml:"library"`
	Scope     string `toml:"scope"`
}

// RenderingTemplateConfig configures the rendering template builder.
type RenderingTemplateConfig struct {
	PluginConfig
	ResourceTypes []string `toml:"resource_types"`
	Endpoint      string   `toml:"endpoint"`
	Site          string   `toml:"site"`
}

// FolderAttributesConfig scopes extra attribute mappings to library folders.
type FolderAttributesConfig struct {
	ID         string   `toml:"id" validate:"required"`
	Rank       int      `toml:"rank"`
	Folders    []string `toml:"folders" validate:"min=1,dive,required"`
	Attributes []string `toml:"attributes"`
}

// TransportsConfig holds the transport plugin settings.
type TransportsConfig struct {
	OCAPI  OCAPIConfig  `toml:"ocapi"`
	WebDAV WebDAVConfig `toml:"webdav"`
}

// OCAPIConfig configures the OCAPI data API transports.
type OCAPIConfig struct {
	Path           string `toml:"path"`
	Version        string `toml:"version"`
	TokenClientID  string `toml:"token_client_id"`
	FolderEndpoint string `toml:"folder_endpoint"`
}

// WebDAVConfig configures the WebDAV transport.
type WebDAVConfig struct {
	Endpoint string `toml:"endpoint"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "sqlite"},
		Agent: AgentConfig{
			Name:         "publish",
			TransportURI: "demandware://default",
			OAuth:        true,
		},
		Server: ServerConfig{Listen: "127.0.0.1:8080"},
	}
}
