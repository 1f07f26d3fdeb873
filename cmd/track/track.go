// Command track flies a fleet along a pre-validated reference trajectory
// and reports tracking-error statistics afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/flight.report/internal/config"
	"github.com/banshee-data/flight.report/internal/flight"
	"github.com/banshee-data/flight.report/internal/flightdata"
	"github.com/banshee-data/flight.report/internal/input"
	"github.com/banshee-data/flight.report/internal/timeutil"
	"github.com/banshee-data/flight.report/internal/trajectory"
	"github.com/banshee-data/flight.report/internal/units"
	"github.com/banshee-data/flight.report/internal/vehiclelink"
	"github.com/banshee-data/flight.report/internal/version"
)

var (
	configPath = flag.String("config", "session.json", "Session config file")
	trajPath   = flag.String("trajectory", "", "Reference trajectory CSV (required)")
	devMode    = flag.Bool("dev", false, "Fly simulated vehicles instead of serial links")
	baud       = flag.Int("baud", 115200, "Serial baud rate (ignored in dev mode)")
)

func main() {
	flag.Parse()
	log.Printf("track %s", version.String())

	if *trajPath == "" {
		log.Fatal("a trajectory file is required (-trajectory)")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// All trajectory validation happens before any vehicle is touched: a
	// bad reference must never reach a flying vehicle.
	traj, err := trajectory.BuildReferenceFile(*trajPath, cfg.GetFlightTime(), cfg.SpeedConstraint(), cfg.GetAutoAdjust())
	if err != nil {
		log.Fatalf("failed to build reference trajectory: %v", err)
	}
	if err := traj.CheckBounds(cfg.BoundsRegion()); err != nil {
		log.Fatalf("trajectory leaves the safety region: %v", err)
	}
	if avg, err := traj.AverageSpeed(); err == nil {
		log.Printf("reference trajectory: %d samples over %.2fs, average speed %s",
			traj.Len(), traj.Duration(), units.FormatSpeed(avg, cfg.GetUnits()))
	}

	clock := timeutil.RealClock{}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	vehicles := make([]*flight.Vehicle, len(cfg.Vehicles))
	for i, vc := range cfg.Vehicles {
		if *devMode {
			p := traj.Position(0)
			vehicles[i] = flight.NewVehicle(i, vehiclelink.NewFollowerLink(clock, [3]float64{p[0], p[1], 0}))
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

	// SIGINT routes through the controller's stop polling, so an operator
	// abort lands the fleet rather than killing the process mid-air.
	src := input.NewChannelSource()
	go func() {
		<-ctx.Done()
		src.Publish(input.Event{Stop: true})
	}()

	ctrl, err := flight.NewController(cfg.FlightConfig(flight.ModeTrajectory), clock, vehicles, traj, src)
	if err != nil {
		log.Fatalf("failed to build controller: %v", err)
	}

	started := time.Now()
	res := ctrl.Run(context.Background())
	stop()
	wg.Wait()

	if res.Aborted {
		log.Printf("flight ABORTED: %v", res.AbortReason)
	}
	report(cfg, vehicles, res, started)
}

func report(cfg *config.SessionConfig, vehicles []*flight.Vehicle, res flight.Result, started time.Time) {
	var archive *flightdata.Archive
	if path := cfg.GetArchivePath(); path != "" {
		var err error
		archive, err = flightdata.OpenArchive(path)
		if err != nil {
			log.Printf("failed to open flight archive: %v", err)
		} else {
			defer archive.Close()
		}
	}

	for _, v := range vehicles {
		stats := v.Recorder.Statistics()
		name := cfg.Vehicles[v.Index].Name
		if stats.NumSamples == 0 {
			log.Printf("vehicle %s: no samples recorded", name)
			continue
		}
		printStatistics(name, stats)

		csvPath := ""
		if cfg.GetSave() {
			path, err := v.Recorder.Save(cfg.GetOutputDir(), started)
			if err != nil {
				log.Printf("vehicle %s: failed to save recording: %v", name, err)
			} else {
				log.Printf("vehicle %s: recording saved to %s", name, path)
				csvPath = path
			}
		}

		if archive != nil {
			id, err := archive.RecordFlight(&flightdata.FlightRecord{
				VehicleIndex: v.Index,
				StartedAt:    started,
				Duration:     stats.TotalTime,
				NumSamples:   stats.NumSamples,
				Aborted:      res.Aborted,
				Stats:        stats,
				CSVPath:      csvPath,
			})
			if err != nil {
				log.Printf("vehicle %s: failed to archive flight: %v", name, err)
			} else {
				log.Printf("vehicle %s: archived as %s", name, id)
			}
		}
	}
}

func printStatistics(name string, stats flightdata.Statistics) {
	fmt.Printf("vehicle %s: %d samples over %.2fs\n", name, stats.NumSamples, stats.TotalTime)
	for axis, label := range []string{"x", "y", "z"} {
		fmt.Printf("  %s: rms %.3fm  mean %.3fm  max %.3fm\n", label,
			stats.RMSError[axis], stats.MeanError[axis], stats.MaxError[axis])
	}
}
