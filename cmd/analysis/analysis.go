// Command analysis inspects recorded flights offline: it recomputes
// tracking-error statistics from a flight CSV, or lists the flight archive.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/flight.report/internal/flightdata"
)

var (
	csvPath     = flag.String("csv", "", "Recorded flight CSV to analyse")
	archivePath = flag.String("archive", "", "Flight archive to list instead of a CSV")
	vehicle     = flag.Int("vehicle", 0, "Vehicle index the CSV belongs to")
)

func main() {
	flag.Parse()

	switch {
	case *csvPath != "":
		analyseCSV(*csvPath, *vehicle)
	case *archivePath != "":
		listArchive(*archivePath)
	default:
		log.Fatal("either -csv or -archive is required")
	}
}

func analyseCSV(path string, vehicleIndex int) {
	rec, err := flightdata.ReadCSVFile(path, vehicleIndex)
	if err != nil {
		log.Fatalf("failed to read recording: %v", err)
	}

	stats := rec.Statistics()
	if stats.NumSamples == 0 {
		log.Fatal("recording contains no samples")
	}

	fmt.Printf("%s: %d samples over %.2fs\n", path, stats.NumSamples, stats.TotalTime)
	for axis, label := range []string{"x", "y", "z"} {
		fmt.Printf("  %s: rms %.3fm  mean %.3fm  max %.3fm\n", label,
			stats.RMSError[axis], stats.MeanError[axis], stats.MaxError[axis])
	}
}

func listArchive(path string) {
	archive, err := flightdata.OpenArchive(path)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	recs, err := archive.ListFlights()
	if err != nil {
		log.Fatalf("failed to list flights: %v", err)
	}
	if len(recs) == 0 {
		fmt.Println("archive is empty")
		return
	}

	for _, r := range recs {
		status := "ok"
		if r.Aborted {
			status = "ABORTED"
		}
		fmt.Printf("%s  vehicle %d  %s  %.2fs  %d samples  rms (%.3f, %.3f, %.3f)m  %s\n",
			r.FlightID, r.VehicleIndex, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Duration, r.NumSamples,
			r.Stats.RMSError[0], r.Stats.RMSError[1], r.Stats.RMSError[2], status)
	}
}
