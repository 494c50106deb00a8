// pkg/config/config.go

package config

import (
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings holds every tunable of the harness. Precedence: defaults < config
// file (modemstress.yaml in CWD or /etc/modemstress) < environment
// (MODEMSTRESS_*) < command-line flags.
type Settings struct {
	Rounds         int           `mapstructure:"rounds"`
	RestartCount   int           `mapstructure:"restart_count"`
	DownTimeout    time.Duration `mapstructure:"down_timeout"`
	RecoverTimeout time.Duration `mapstructure:"recover_timeout"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	SuspendSettle  time.Duration `mapstructure:"suspend_settle"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	DeviceGrace    time.Duration `mapstructure:"device_grace"`
	WakeSeconds    int           `mapstructure:"wake_seconds"`

	Unit          string   `mapstructure:"unit"`
	Connection    string   `mapstructure:"connection"`
	ControlPath   string   `mapstructure:"control_path"`
	FaultToken    string   `mapstructure:"fault_token"`
	DeviceGlobs   []string `mapstructure:"device_globs"`
	HookPattern   string   `mapstructure:"hook_pattern"`
	PingTarget    string   `mapstructure:"ping_target"`
	PingInterface string   `mapstructure:"ping_interface"`
	LoadWorkers   int      `mapstructure:"load_workers"`

	MarkersFile string `mapstructure:"markers_file"`
}

// Defaults returns the built-in settings, tuned for the reference modem.
func Defaults() *Settings {
	return &Settings{
		Rounds:         5,
		RestartCount:   10,
		DownTimeout:    15 * time.Second,
		RecoverTimeout: 90 * time.Second,
		SettleDelay:    5 * time.Second,
		SuspendSettle:  10 * time.Second,
		ConnectTimeout: 30 * time.Second,
		PollInterval:   time.Second,
		DeviceGrace:    10 * time.Second,
		WakeSeconds:    20,
		Unit:           "ModemManager.service",
		Connection:     "",
		ControlPath:    "/sys/kernel/debug/wwan_fault/trigger",
		FaultToken:     "crash",
		DeviceGlobs:    []string{"/dev/cdc-wdm*", "/dev/wwan0*"},
		HookPattern:    `wwan[_-]?recovery: resume hook fired`,
		PingTarget:     "8.8.8.8",
		PingInterface:  "", // empty routes over whatever interface the kernel picks
		LoadWorkers:    4,
	}
}

// Load resolves settings from file, environment, and any bound flags.
func Load(log *zap.Logger) (*Settings, error) {
	v := viper.GetViper()
	applyDefaults(v, Defaults())

	v.SetConfigName("modemstress")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/modemstress")
	v.SetEnvPrefix("MODEMSTRESS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !cerr.As(err, &notFound) {
			return nil, cerr.Wrap(err, "reading config file")
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Info("Loaded config file", zap.String("path", v.ConfigFileUsed()))
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, cerr.Wrap(err, "unmarshaling settings")
	}
	return s, nil
}

// BindFlags registers the flag-overridable subset on a pflag set and wires it
// into viper so flags win over file and environment.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Int("rounds", d.Rounds, "rounds per scenario")
	fs.Duration("recover-timeout", d.RecoverTimeout, "per-round recovery deadline")
	fs.Duration("down-timeout", d.DownTimeout, "deadline for the fault to take effect")
	fs.String("connection", d.Connection, "NetworkManager connection name for conn-cycle")
	fs.String("unit", d.Unit, "modem daemon systemd unit")
	fs.String("control-path", d.ControlPath, "fault trigger control file")

	v := viper.GetViper()
	_ = v.BindPFlag("rounds", fs.Lookup("rounds"))
	_ = v.BindPFlag("recover_timeout", fs.Lookup("recover-timeout"))
	_ = v.BindPFlag("down_timeout", fs.Lookup("down-timeout"))
	_ = v.BindPFlag("connection", fs.Lookup("connection"))
	_ = v.BindPFlag("unit", fs.Lookup("unit"))
	_ = v.BindPFlag("control_path", fs.Lookup("control-path"))
}

func applyDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("rounds", d.Rounds)
	v.SetDefault("restart_count", d.RestartCount)
	v.SetDefault("down_timeout", d.DownTimeout)
	v.SetDefault("recover_timeout", d.RecoverTimeout)
	v.SetDefault("settle_delay", d.SettleDelay)
	v.SetDefault("suspend_settle", d.SuspendSettle)
	v.SetDefault("connect_timeout", d.ConnectTimeout)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("device_grace", d.DeviceGrace)
	v.SetDefault("wake_seconds", d.WakeSeconds)
	v.SetDefault("unit", d.Unit)
	v.SetDefault("connection", d.Connection)
	v.SetDefault("control_path", d.ControlPath)
	v.SetDefault("fault_token", d.FaultToken)
	v.SetDefault("device_globs", d.DeviceGlobs)
	v.SetDefault("hook_pattern", d.HookPattern)
	v.SetDefault("ping_target", d.PingTarget)
	v.SetDefault("ping_interface", d.PingInterface)
	v.SetDefault("load_workers", d.LoadWorkers)
	v.SetDefault("markers_file", "")
}
