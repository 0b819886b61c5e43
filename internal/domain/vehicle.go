package domain

// VehicleClass identifies the kind of vehicle a ride is priced and dispatched for.
type VehicleClass string

const (
	VehicleClassMoto    VehicleClass = "moto"
	VehicleClassCar     VehicleClass = "car"
	VehicleClassPremium VehicleClass = "premium"
	VehicleClassAuto    VehicleClass = "auto"
	VehicleClassTaxi    VehicleClass = "taxi"
)

// VehicleClasses lists every supported class in display order.
var VehicleClasses = []VehicleClass{
	VehicleClassMoto,
	VehicleClassCar,
	VehicleClassPremium,
	VehicleClassAuto,
	VehicleClassTaxi,
}

// vehicleClassAliases maps names used by older clients to a class.
var vehicleClassAliases = map[string]VehicleClass{
	"motorcycle": VehicleClassMoto,
	"standard":   VehicleClassCar,
	"carxl":      VehicleClassPremium,
}

// ParseVehicleClass resolves a client-supplied class name.
func ParseVehicleClass(s string) (VehicleClass, bool) {
	for _, c := range VehicleClasses {
		if string(c) == s {
			return c, true
		}
	}
	c, ok := vehicleClassAliases[s]
	return c, ok
}

// Vehicle describes a driver's registered vehicle.
type Vehicle struct {
	Class    VehicleClass
	Plate    string
	Color    string
	Name     string
	Capacity int
}
