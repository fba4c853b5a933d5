package punch

// Location is where a punch was made: KnownLocation or UnknownLocation.
type Location interface {
	isLocation()
}

type KnownLocation struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters *float64
}

// UnknownLocation covers punches with no usable fix, e.g. permission denied or a kiosk without GPS.
type UnknownLocation struct {
	Reason string
}

func (KnownLocation) isLocation()   {}
func (UnknownLocation) isLocation() {}
