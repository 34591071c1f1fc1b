package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/tdstore/pos-scanner/internal/catalog"
	"github.com/tdstore/pos-scanner/internal/pos"
	"github.com/tdstore/pos-scanner/internal/scan"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// termDisplay renders scan outcomes to the kiosk terminal.
type termDisplay struct {
	cart *pos.Cart
}

func (t *termDisplay) ShowProduct(p *catalog.Product) {
	fmt.Printf("%s  %s  %.0f\n", p.Barcode, p.Name, p.Price)
	t.printTotal()
}

func (t *termDisplay) ShowNotFound(barcode string) {
	fmt.Printf("%s  (not in catalog)\n", barcode)
}

func (t *termDisplay) AcknowledgeLine(barcode string) {
	fmt.Printf("%s  (already in cart)\n", barcode)
}

func (t *termDisplay) printTotal() {
	if t.cart == nil {
		return
	}
	fmt.Printf("cart total: %.0f (%d lines)\n", t.cart.Total(), len(t.cart.Lines()))
}

func main() {
	fs := ff.NewFlagSet("pos-kiosk")
	var (
		serverURL = fs.StringLong("server", "http://localhost:8080", "Catalog server base URL")
		device    = fs.StringLong("device", "", "Camera device path (default: auto-select, preferring a rear camera)")
		mode      = fs.StringLong("mode", "price", "Scan mode: 'price', 'cart' or 'fill'")
		interval  = fs.DurationLong("interval", scan.DefaultInterval, "Sampling interval")
		showVer   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("POS_KIOSK"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}

	lookup := catalog.NewClient(*serverURL)

	var (
		sink     scan.Sink
		autoStop bool
	)
	switch *mode {
	case "price":
		sink = pos.NewPriceSink(lookup, &termDisplay{})
	case "cart":
		cart := pos.NewCart()
		sink = pos.NewCartSink(lookup, &termDisplay{cart: cart}, cart)
	case "fill":
		// One read, print it, release the camera. Useful for wiring the
		// kiosk scanner into shell scripts.
		sink = pos.NewFillSink(func(payload string) { fmt.Println(payload) })
		autoStop = true
	default:
		slog.Error("Invalid mode", "mode", *mode, "valid", "price, cart or fill")
		os.Exit(1)
	}

	events := make(chan scan.Event, 16)
	go func() {
		for ev := range events {
			slog.Debug("scanner event", "kind", ev.Kind.String(), "payload", ev.Payload, "error", ev.Err)
		}
	}()

	manager := scan.NewManager()
	session, err := manager.Start(scan.Config{
		Device:          *device,
		Interval:        *interval,
		AutoStopOnMatch: autoStop,
		Sink:            sink,
		Events:          events,
	})
	if err != nil {
		slog.Error("Failed to start scanner", "error", err)
		os.Exit(1)
	}

	slog.Info("Scanner running", "mode", *mode, "interval", interval.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		slog.Info("Shutting down...")
		session.Stop()
	case <-session.Done():
	}

	// The camera is released within one sampling interval of the stop
	// request; wait for it so the device is free for the next run.
	waitDone(session, 2*(*interval)+time.Second)
}

func waitDone(session *scan.Session, timeout time.Duration) {
	select {
	case <-session.Done():
	case <-time.After(timeout):
		slog.Warn("Timed out waiting for camera release")
	}
}
