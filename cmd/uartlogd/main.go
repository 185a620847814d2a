package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/logtalks/uartlog.go/pkg/console"
	"github.com/logtalks/uartlog.go/pkg/console/cmds"
	"github.com/logtalks/uartlog.go/pkg/device"
	"github.com/logtalks/uartlog.go/pkg/framework"
	"github.com/logtalks/uartlog.go/pkg/logger"
	"github.com/logtalks/uartlog.go/pkg/status"
	"github.com/logtalks/uartlog.go/pkg/storage"
	"github.com/logtalks/uartlog.go/pkg/tap"
	"github.com/logtalks/uartlog.go/pkg/transport/mqtt"
	"github.com/logtalks/uartlog.go/pkg/transport/stream"
	ws "github.com/logtalks/uartlog.go/pkg/transport/websocket"
)

var stdioConsole = false

func init() {
	if val := os.Getenv("UARTLOG_STDIO"); val != "" {
		stdioConsole = val == "1" || val == "true"
	}
	flag.BoolVar(&stdioConsole, "stdio", stdioConsole, "Run a console session on standard I/O.")
	device.SetupFlags()
}

func main() {
	flag.Parse()
	conf := device.NewConfig()
	if !conf.Ref.IsValid() {
		glog.Exitf("invalid device ref %q: set -id", conf.Ref.Name())
	}
	if conf.Meta.Description == "" {
		conf.Meta.Description = "UART Logger"
	}

	var power storage.PowerControl = storage.NopPower{}
	if conf.BusGPIO != "" || conf.RailGPIO != "" {
		power = &storage.GPIOPower{BusPath: conf.BusGPIO, RailPath: conf.RailGPIO}
	}

	var reporter *status.Reporter
	var indicator storage.Indicator = storage.LogIndicator{}
	if conf.BrokerURL != "" {
		var err error
		if reporter, err = status.NewReporter(conf.BrokerURL, conf.Ref, conf.Meta); err != nil {
			glog.Exitf("reporter: %v", err)
		}
		indicator = reporter
	}

	st := storage.NewManager(&storage.DirVolume{Dir: conf.VolumeDir}, power, indicator)
	if reporter != nil {
		st.Notifier = reporter
	}
	arb := tap.New()

	var source io.Reader
	if conf.SourcePath != "" {
		src, err := stream.Open(conf.SourcePath)
		if err != nil {
			glog.Exitf("open source %q: %v", conf.SourcePath, err)
		}
		source = src
	} else if reporter != nil {
		source = mqtt.NewEndpoint(reporter.Queue).ForSource(conf.Ref.Name()).Open()
	} else {
		glog.Exit("no source: specify -source or -mqtt")
	}

	deps := &cmds.Deps{Storage: st, Arbiter: arb}
	newSession := func(ctx context.Context, rw io.ReadWriter) error {
		return console.NewSession(rw, cmds.Table(deps)).Run(ctx)
	}

	runner := framework.NewRunner().HandleSignals()
	runner.Go(framework.NamedRun("logger", logger.New(source, st, arb)))
	if reporter != nil {
		runner.Go(framework.NamedRun("reporter", reporter))
		runner.Go(framework.NamedRun("heartbeat", status.NewHeartbeat(reporter, indicator)))
		remote := mqtt.NewEndpoint(reporter.Queue).ForConsole(conf.Ref.Name()).Open()
		runner.Go(framework.NamedRun("console/mqtt",
			console.NewSession(remote, cmds.Table(deps))))
	}
	if conf.ConsoleListen != "" {
		runner.Go(framework.NamedRun("console/ws",
			ws.NewServer(conf.ConsoleListen, "/console", newSession)))
	}
	if stdioConsole {
		runner.Go(framework.NamedRun("console/stdio",
			console.NewSession(stream.StdIO(), cmds.Table(deps))))
	}

	if err := runner.Wait(); err != nil {
		glog.Exitf("exit: %v", err)
	}
	glog.Flush()
}
