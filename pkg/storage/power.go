package storage

import (
	"io/ioutil"

	"github.com/golang/glog"
)

// NopPower is a PowerControl for storage that is always powered, such
// as a directory on a host filesystem.
type NopPower struct{}

// EnableBus implements PowerControl.
func (NopPower) EnableBus() error { return nil }

// DisableBus implements PowerControl.
func (NopPower) DisableBus() error { return nil }

// PowerOn implements PowerControl.
func (NopPower) PowerOn() error { return nil }

// PowerOff implements PowerControl.
func (NopPower) PowerOff() error { return nil }

// GPIOPower drives bus signaling and the power rail through two
// sysfs-style GPIO value files, writing "1" to assert and "0" to
// deassert.
type GPIOPower struct {
	BusPath  string
	RailPath string
}

// EnableBus implements PowerControl.
func (p *GPIOPower) EnableBus() error { return p.set(p.BusPath, true) }

// DisableBus implements PowerControl.
func (p *GPIOPower) DisableBus() error { return p.set(p.BusPath, false) }

// PowerOn implements PowerControl.
func (p *GPIOPower) PowerOn() error { return p.set(p.RailPath, true) }

// PowerOff implements PowerControl.
func (p *GPIOPower) PowerOff() error { return p.set(p.RailPath, false) }

func (p *GPIOPower) set(path string, on bool) error {
	if path == "" {
		return nil
	}
	value := []byte("0\n")
	if on {
		value = []byte("1\n")
	}
	glog.V(3).Infof("gpio %q <- %q", path, value[:1])
	return ioutil.WriteFile(path, value, 0644)
}

// LogIndicator is an Indicator that only traces activity to the log.
type LogIndicator struct{}

// ToggleActivity implements Indicator.
func (LogIndicator) ToggleActivity() {
	glog.V(3).Info("storage write activity")
}

// ClearActivity implements Indicator.
func (LogIndicator) ClearActivity() {}
