// Command teleop flies a vehicle under operator control: direction events
// read from stdin displace the hover target, clamped to the safety region
// every tick.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/flight.report/internal/config"
	"github.com/banshee-data/flight.report/internal/flight"
	"github.com/banshee-data/flight.report/internal/input"
	"github.com/banshee-data/flight.report/internal/timeutil"
	"github.com/banshee-data/flight.report/internal/vehiclelink"
	"github.com/banshee-data/flight.report/internal/version"
)

var (
	configPath = flag.String("config", "session.json", "Session config file")
	devMode    = flag.Bool("dev", false, "Fly a simulated vehicle instead of serial links")
	baud       = flag.Int("baud", 115200, "Serial baud rate (ignored in dev mode)")
)

func main() {
	flag.Parse()
	log.Printf("teleop %s", version.String())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	clock := timeutil.RealClock{}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	vehicles := make([]*flight.Vehicle, len(cfg.Vehicles))
	for i, vc := range cfg.Vehicles {
		if *devMode {
			vehicles[i] = flight.NewVehicle(i, vehiclelink.NewFollowerLink(clock, [3]float64{0, 0, 0}))
			continue
		}
		link, err := vehiclelink.OpenSerialLink(vc.Address, *baud)
		if err != nil {
			log.Fatalf("vehicle %s: failed to open %s: %v", vc.Name, vc.Address, err)
		}
		defer link.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := link.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("vehicle %s: monitor: %v", vc.Name, err)
			}
		}()
		vehicles[i] = flight.NewVehicle(i, link)
	}

	src := input.NewChannelSource()
	go readOperatorInput(ctx, src)
	go func() {
		<-ctx.Done()
		src.Publish(input.Event{Stop: true})
	}()

	ctrl, err := flight.NewController(cfg.FlightConfig(flight.ModeTeleop), clock, vehicles, nil, src)
	if err != nil {
		log.Fatalf("failed to build controller: %v", err)
	}

	log.Print("teleop controls: w/a/s/d move, r/f up/down, space hold, q land")
	started := time.Now()
	res := ctrl.Run(context.Background())
	stop()
	wg.Wait()

	if res.Aborted {
		log.Printf("flight ABORTED: %v", res.AbortReason)
	}
	log.Printf("session over after %.1fs (phase %s)", res.Elapsed, res.Phase)

	if cfg.GetSave() {
		for _, v := range vehicles {
			if v.Recorder.Len() == 0 {
				continue
			}
			path, err := v.Recorder.Save(cfg.GetOutputDir(), started)
			if err != nil {
				log.Printf("vehicle %d: failed to save recording: %v", v.Index, err)
			} else {
				log.Printf("vehicle %d: recording saved to %s", v.Index, path)
			}
		}
	}
}

// readOperatorInput publishes one event per stdin line. Line-buffered input
// is deliberately thin: a raw-terminal or joystick reader can publish into
// the same channel without the controller changing.
func readOperatorInput(ctx context.Context, src *input.ChannelSource) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		var e input.Event
		switch strings.TrimSpace(scanner.Text()) {
		case "w":
			e.DY = 1
		case "s":
			e.DY = -1
		case "a":
			e.DX = -1
		case "d":
			e.DX = 1
		case "r":
			e.DZ = 1
		case "f":
			e.DZ = -1
		case "q":
			e.Stop = true
		case "":
			// hold position
		default:
			continue
		}
		src.Publish(e)
		if e.Stop {
			return
		}
	}
}
