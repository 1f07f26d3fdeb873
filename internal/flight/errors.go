package flight

import (
	"fmt"
	"time"
)

// PoseTimeoutError reports that a vehicle produced no usable pose (or never
// cleared the minimum altitude) within the takeoff window. The vehicle is
// landed immediately as a precaution.
type PoseTimeoutError struct {
	VehicleIndex int
	Timeout      time.Duration
}

func (e *PoseTimeoutError) Error() string {
	return fmt.Sprintf("vehicle %d: no valid pose within takeoff window %s",
		e.VehicleIndex, e.Timeout)
}

// UnsafeVehicleError reports that the vehicle-control service's safety
// predicate went false mid-flight.
type UnsafeVehicleError struct {
	VehicleIndex int
}

func (e *UnsafeVehicleError) Error() string {
	return fmt.Sprintf("vehicle %d reported unsafe", e.VehicleIndex)
}
