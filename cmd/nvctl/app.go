package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/control"
	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/internal/config"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/resolver"
)

// opener loads the driver named by path and returns a function that
// unloads it.
type opener func(path string) (native.Invoker, func() error, error)

func openDriver(path string) (native.Invoker, func() error, error) {
	d, err := native.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return d, d.Close, nil
}

// app carries state shared by every command of one invocation.
type app struct {
	out    io.Writer
	open   opener
	v      *viper.Viper
	cfg    *config.Config
	log    *zap.Logger
	client *control.Client
	closer func() error
	inited bool
}

func newApp(out io.Writer) *app {
	return &app{out: out, open: openDriver, log: zap.NewNop()}
}

// setup loads configuration and installs the logger. Flags bound to
// config keys override file and environment values when set.
func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	a.v = config.New(path)
	for key, flag := range map[string]string{
		"output.format":  "output",
		"output.color":   "color",
		"driver.library": "library",
		"logging.level":  "log-level",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.log = log
	resolver.SetLogger(log.Named("resolver"))
	dispatch.SetLogger(log.Named("dispatch"))
	native.SetLogger(log.Named("native"))
	control.SetLogger(log.Named("control"))
	return nil
}

// driver opens the driver and initializes the api on first use.
func (a *app) driver() (*control.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	inv, closer, err := a.open(a.cfg.Driver.Library)
	if err != nil {
		return nil, fmt.Errorf("open driver: %w", err)
	}
	c, err := control.New(inv, control.WithLogger(a.log.Named("control")))
	if err != nil {
		closer()
		return nil, err
	}
	if !a.cfg.Driver.SkipInitialize {
		if err := c.Initialize(); err != nil {
			closer()
			return nil, fmt.Errorf("initialize: %w", err)
		}
		a.inited = true
	}
	a.client, a.closer = c, closer
	return c, nil
}

// shutdown unloads the api and the driver module if they were opened.
func (a *app) shutdown() error {
	if a.client == nil {
		return nil
	}
	var err error
	if a.inited {
		err = a.client.Unload()
	}
	if cerr := a.closer(); err == nil {
		err = cerr
	}
	a.client, a.closer, a.inited = nil, nil, false
	a.log.Sync()
	return err
}

func (a *app) printer() *printer {
	return newPrinter(a.out, a.cfg.Output)
}
