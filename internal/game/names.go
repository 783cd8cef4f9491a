package game

// TitanName is a display name drawn when a new titan is generated.
type TitanName string

// DefaultTitanNames is the name pool used when the configuration does not
// provide one.
var DefaultTitanNames = []TitanName{"Atlas", "Hyperion", "Prometheus", "Cronus", "Oceanus"}
