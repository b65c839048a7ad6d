package meshlevel

// ZOffsetter provides a height offset for an XY position.
type ZOffsetter interface {
	OffsetZ(x, y float64) (bool, float64)
}
