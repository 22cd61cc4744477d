package kinematicconstraints

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// Region is a bounding region placed in the model's root frame.
type Region struct {
	shape RegionShape
	dims  r3.Vector // radius in X for spheres, half extents for boxes
	pose  spatial.Pose
}

func newRegion(spec RegionSpec, frame spatial.Pose) (*Region, error) {
	for _, d := range spec.Dimensions {
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return nil, errors.Errorf("region dimensions must be finite and positive, got %v", spec.Dimensions)
		}
	}
	r := &Region{shape: spec.Shape, pose: spatial.Compose(frame, spatial.NewPoseFromPoint(spec.Center))}
	switch spec.Shape {
	case SphereRegion:
		if len(spec.Dimensions) != 1 {
			return nil, errors.Errorf("sphere region needs 1 dimension, got %d", len(spec.Dimensions))
		}
		r.dims = r3.Vector{X: spec.Dimensions[0]}
	case BoxRegion:
		if len(spec.Dimensions) != 3 {
			return nil, errors.Errorf("box region needs 3 dimensions, got %d", len(spec.Dimensions))
		}
		r.dims = r3.Vector{X: spec.Dimensions[0] / 2, Y: spec.Dimensions[1] / 2, Z: spec.Dimensions[2] / 2}
	default:
		return nil, errors.Errorf("unsupported region shape %q", spec.Shape)
	}
	return r, nil
}

// Shape returns the region primitive.
func (r *Region) Shape() RegionShape {
	return r.shape
}

// Center returns the region center in the root frame.
func (r *Region) Center() r3.Vector {
	return r.pose.Point()
}

// Volume returns the region volume.
func (r *Region) Volume() float64 {
	if r.shape == SphereRegion {
		return 4. / 3. * math.Pi * r.dims.X * r.dims.X * r.dims.X
	}
	return 8 * r.dims.X * r.dims.Y * r.dims.Z
}

// Contains reports whether a root frame point is inside the region.
func (r *Region) Contains(pt r3.Vector) bool {
	local := spatial.TransformPoint(spatial.PoseInverse(r.pose), pt)
	if r.shape == SphereRegion {
		return local.Norm() <= r.dims.X
	}
	return math.Abs(local.X) <= r.dims.X && math.Abs(local.Y) <= r.dims.Y && math.Abs(local.Z) <= r.dims.Z
}

// Sample draws a root frame point uniformly from the region.
func (r *Region) Sample(rSeed *rand.Rand) r3.Vector {
	var local r3.Vector
	if r.shape == SphereRegion {
		// gaussian direction, radius scaled by the cube root for a uniform density
		local = r3.Vector{X: rSeed.NormFloat64(), Y: rSeed.NormFloat64(), Z: rSeed.NormFloat64()}
		if n := local.Norm(); n > 0 {
			local = local.Mul(1 / n)
		} else {
			local = r3.Vector{X: 1}
		}
		local = local.Mul(r.dims.X * math.Cbrt(rSeed.Float64()))
	} else {
		local = r3.Vector{
			X: (2*rSeed.Float64() - 1) * r.dims.X,
			Y: (2*rSeed.Float64() - 1) * r.dims.Y,
			Z: (2*rSeed.Float64() - 1) * r.dims.Z,
		}
	}
	return spatial.TransformPoint(r.pose, local)
}
