package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/xiview/internal/logging"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "config.toml"

// Caret policy spellings accepted by view.caret_policy.
const (
	CaretBeforeLineBreak = "before-line-break"
	CaretOff             = "off"
)

// Duration is a time.Duration that reads and writes TOML strings such as
// "50ms" or "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete xiview configuration.
type Config struct {
	Engine      EngineConfig `toml:"engine"`
	View        ViewConfig   `toml:"view"`
	Input       InputConfig  `toml:"input"`
	Preferences Preferences  `toml:"preferences"`
	Log         LogConfig    `toml:"log"`
	Broker      BrokerConfig `toml:"broker"`
}

// EngineConfig tells the client how to reach the engine.
type EngineConfig struct {
	// BrokerURL is the broker's WebSocket endpoint.
	BrokerURL string `toml:"broker_url"`
	// File is opened when no file is given on the command line.
	File string `toml:"file"`
	// ConfigDir is sent with client_started and receives the preferences file.
	ConfigDir string `toml:"config_dir"`
	// RequestTimeout bounds new_view and save replies.
	RequestTimeout Duration `toml:"request_timeout"`
}

// ViewConfig holds the line metrics of a document view.
type ViewConfig struct {
	// LineHeight is the height of one line in layout pixels.
	LineHeight float64 `toml:"line_height"`
	// CellWidth is the width of one terminal cell in layout pixels.
	CellWidth float64 `toml:"cell_width"`
	// Cushion is the number of lines materialized beyond what fits.
	Cushion  int `toml:"cushion_lines"`
	TabWidth int `toml:"tab_width"`
	// WrapWidth wraps lines at this many cells; 0 disables wrapping.
	WrapWidth int `toml:"wrap_width"`
	// CaretPolicy is "before-line-break" or "off".
	CaretPolicy string `toml:"caret_policy"`
}

// InputConfig configures pointer and key handling.
type InputConfig struct {
	// DragInterval is the minimum time between drag reports.
	DragInterval    Duration `toml:"drag_interval"`
	DoubleClickTime Duration `toml:"double_click_time"`
	// KeymapScript is an optional Lua script adding key bindings.
	KeymapScript string `toml:"keymap_script"`
}

// Preferences are the engine settings written to preferences.xiconfig.
type Preferences struct {
	TabSize               int    `toml:"tab_size"`
	TranslateTabsToSpaces bool   `toml:"translate_tabs_to_spaces"`
	UseTabStops           bool   `toml:"use_tab_stops"`
	AutoIndent            bool   `toml:"auto_indent"`
	ScrollPastEnd         bool   `toml:"scroll_past_end"`
	WrapWidth             int    `toml:"wrap_width"`
	LineEnding            string `toml:"line_ending"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives log output. Empty means stderr for the broker and no
	// logging for the terminal client.
	File string `toml:"file"`
}

// BrokerConfig configures the xibroker process.
type BrokerConfig struct {
	Listen      string   `toml:"listen"`
	CorePath    string   `toml:"core_path"`
	CoreArgs    []string `toml:"core_args"`
	CallTimeout Duration `toml:"call_timeout"`
	// OriginPatterns lists extra browser origins allowed to connect.
	OriginPatterns []string `toml:"origin_patterns"`
}

// DefaultDir returns the default configuration directory.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".xiview"
	}
	return filepath.Join(dir, "xiview")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			BrokerURL:      "ws://127.0.0.1:8765/ws",
			ConfigDir:      DefaultDir(),
			RequestTimeout: Duration(10 * time.Second),
		},
		View: ViewConfig{
			LineHeight:  16,
			CellWidth:   8,
			Cushion:     5,
			TabWidth:    4,
			CaretPolicy: CaretBeforeLineBreak,
		},
		Input: InputConfig{
			DragInterval:    Duration(50 * time.Millisecond),
			DoubleClickTime: Duration(400 * time.Millisecond),
		},
		Preferences: Preferences{
			TabSize:               4,
			TranslateTabsToSpaces: true,
			UseTabStops:           true,
			AutoIndent:            false,
			ScrollPastEnd:         true,
			WrapWidth:             0,
			LineEnding:            "\r\n",
		},
		Log: LogConfig{
			Level: "info",
		},
		Broker: BrokerConfig{
			Listen:      "127.0.0.1:8765",
			CorePath:    "xi-core",
			CallTimeout: Duration(10 * time.Second),
		},
	}
}

// Load reads the configuration at path on top of the defaults, applies
// environment overrides and validates the result. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(cfg, path, data); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults and validates it.
// Environment overrides are not applied.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(cfg, "<input>", data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(cfg *Config, source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

// applyEnv applies XIVIEW_* overrides.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("XIVIEW_BROKER_URL"); v != "" {
		c.Engine.BrokerURL = v
	}
	if v := getenv("XIVIEW_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("XIVIEW_CORE_PATH"); v != "" {
		c.Broker.CorePath = v
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.Engine.BrokerURL == "" {
		v.add("engine.broker_url", ErrCodeRequiredMissing, c.Engine.BrokerURL, "required")
	} else if u, err := url.Parse(c.Engine.BrokerURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		v.add("engine.broker_url", ErrCodeInvalidEnum, c.Engine.BrokerURL, "must be a ws:// or wss:// URL")
	}
	if c.Engine.RequestTimeout <= 0 {
		v.add("engine.request_timeout", ErrCodeOutOfRange, c.Engine.RequestTimeout.Std(), "must be positive")
	}

	if c.View.LineHeight <= 0 {
		v.add("view.line_height", ErrCodeOutOfRange, c.View.LineHeight, "must be positive")
	}
	if c.View.CellWidth <= 0 {
		v.add("view.cell_width", ErrCodeOutOfRange, c.View.CellWidth, "must be positive")
	}
	if c.View.Cushion < 0 {
		v.add("view.cushion_lines", ErrCodeOutOfRange, c.View.Cushion, "must not be negative")
	}
	if c.View.TabWidth < 1 || c.View.TabWidth > 16 {
		v.add("view.tab_width", ErrCodeOutOfRange, c.View.TabWidth, "must be between 1 and 16")
	}
	if c.View.WrapWidth < 0 {
		v.add("view.wrap_width", ErrCodeOutOfRange, c.View.WrapWidth, "must not be negative")
	}
	switch c.View.CaretPolicy {
	case CaretBeforeLineBreak, CaretOff:
	default:
		v.add("view.caret_policy", ErrCodeInvalidEnum, c.View.CaretPolicy, "must be %q or %q", CaretBeforeLineBreak, CaretOff)
	}

	if c.Input.DragInterval < 0 {
		v.add("input.drag_interval", ErrCodeOutOfRange, c.Input.DragInterval.Std(), "must not be negative")
	}
	if c.Input.DoubleClickTime <= 0 {
		v.add("input.double_click_time", ErrCodeOutOfRange, c.Input.DoubleClickTime.Std(), "must be positive")
	}

	if c.Preferences.TabSize < 1 || c.Preferences.TabSize > 16 {
		v.add("preferences.tab_size", ErrCodeOutOfRange, c.Preferences.TabSize, "must be between 1 and 16")
	}
	if c.Preferences.WrapWidth < 0 {
		v.add("preferences.wrap_width", ErrCodeOutOfRange, c.Preferences.WrapWidth, "must not be negative")
	}
	switch c.Preferences.LineEnding {
	case "\n", "\r\n":
	default:
		v.add("preferences.line_ending", ErrCodeInvalidEnum, c.Preferences.LineEnding, "must be LF or CRLF")
	}

	if !logging.ValidLevel(c.Log.Level) {
		v.add("log.level", ErrCodeInvalidEnum, c.Log.Level, "must be debug, info, warn or error")
	}

	if c.Broker.Listen == "" {
		v.add("broker.listen", ErrCodeRequiredMissing, c.Broker.Listen, "required")
	}
	for _, p := range c.Broker.OriginPatterns {
		if _, err := path.Match(p, "localhost"); err != nil {
			v.add("broker.origin_patterns", ErrCodeInvalidEnum, p, "must be a valid host pattern")
		}
	}
	if c.Broker.CorePath == "" {
		v.add("broker.core_path", ErrCodeRequiredMissing, c.Broker.CorePath, "required")
	}
	if c.Broker.CallTimeout <= 0 {
		v.add("broker.call_timeout", ErrCodeOutOfRange, c.Broker.CallTimeout.Std(), "must be positive")
	}

	if len(v.Fields) > 0 {
		return v
	}
	return nil
}
