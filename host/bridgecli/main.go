/*
Command bridgecli is a host for the font bridge.

It either runs an interactive shell, or, with flag -serve, an HTTP server
offering the bridge's operations to a browser-based font editor.

	bridgecli -font MyFont.json
	bridgecli -serve :8000 -static ./webapp

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/npillmayer/fontbridge/bridge"
	"github.com/npillmayer/fontbridge/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'fontbridge.host'.
func tracer() tracing.Trace {
	return tracing.Select("fontbridge.host")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font description to load")
	serve := flag.String("serve", "", "Serve HTTP at this address instead of running a shell")
	static := flag.String("static", "", "Directory of static files to serve with -serve")
	delay := flag.String("delay", "1s", "Auto-compile delay after the last store")
	flag.Parse()

	// set up logging and configuration
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":              "go",
		"trace.fontbridge.host":        *tlevel,
		"trace.fontbridge.bridge":      *tlevel,
		"trace.fontbridge.font":        "Error",
		"trace.fontbridge.compile":     "Error",
		"trace.fontbridge.interpolate": "Error",
		keyDelay:                       *delay,
		keyAddr:                        *serve,
		keyStaticDir:                   *static,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	settings := SettingsFrom(conf)
	b := bridge.New(bridge.NewSlot())

	if *serve != "" {
		srv := NewServer(b, settings)
		defer srv.Close()
		pterm.Info.Printfln("%s serving at http://%s/", bridge.Version(), settings.Addr)
		if err := http.ListenAndServe(settings.Addr, srv); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(2)
		}
		return
	}

	pterm.Info.Printfln("Welcome to %s", bridge.Version()) // colored welcome message
	intp, err := NewIntp(b)
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer intp.Close()
	if *fontname != "" {
		if err := intp.load(*fontname); err != nil { // font name provided by flag
			core.UserError(err)
			os.Exit(4)
		}
	}
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
