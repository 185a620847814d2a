// Package device provides the logger device's identity and the
// configuration shared by the daemon and its tools.
package device

import (
	"flag"
	"os"
)

// Ref identifies a logger device.
type Ref struct {
	// Type is the device type, the first topic segment on the broker.
	Type string
	// ID is the unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// Meta provides device metadata for monitors.
type Meta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Config provides common options to compose the logger daemon.
type Config struct {
	Ref  Ref
	Meta Meta

	// BrokerURL specifies the MQTT broker for status reporting and
	// broker-backed endpoints. e.g. mqtt://host:port/topic-prefix
	BrokerURL string

	// SourcePath is the device file of the monitored UART. When empty
	// and a broker is configured, the source is read from the broker
	// instead.
	SourcePath string

	// VolumeDir is the mount point of the removable storage volume.
	VolumeDir string

	// BusGPIO and RailGPIO are sysfs GPIO value files driving storage
	// bus signaling and power. Empty means no power control.
	BusGPIO  string
	RailGPIO string

	// ConsoleListen is the websocket listen address for remote console
	// sessions. Empty disables the listener.
	ConsoleListen string
}

var defaultConfig = Config{
	Ref:       Ref{Type: "uartlog"},
	BrokerURL: "mqtt://localhost:1883/uartlog/",
	VolumeDir: "/media/sdcard",
}

func init() {
	if val := os.Getenv("UARTLOG_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("UARTLOG_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	if val := os.Getenv("UARTLOG_SOURCE"); val != "" {
		defaultConfig.SourcePath = val
	}
	if val := os.Getenv("UARTLOG_VOLUME"); val != "" {
		defaultConfig.VolumeDir = val
	}
	if val := os.Getenv("UARTLOG_LISTEN"); val != "" {
		defaultConfig.ConsoleListen = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.ID, "id", defaultConfig.Ref.ID, "Device ID.")
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.SourcePath, "source", defaultConfig.SourcePath, "Monitored UART device file.")
	flag.StringVar(&defaultConfig.VolumeDir, "volume", defaultConfig.VolumeDir, "Storage volume mount point.")
	flag.StringVar(&defaultConfig.BusGPIO, "bus-gpio", defaultConfig.BusGPIO, "Storage bus GPIO value file.")
	flag.StringVar(&defaultConfig.RailGPIO, "rail-gpio", defaultConfig.RailGPIO, "Storage power rail GPIO value file.")
	flag.StringVar(&defaultConfig.ConsoleListen, "listen", defaultConfig.ConsoleListen, "Websocket console listen address.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations. The device
// ID falls back to the machine ID.
func NewConfig() *Config {
	conf := defaultConfig
	if conf.Ref.ID == "" {
		conf.Ref.ID = MachineID()
	}
	return &conf
}
