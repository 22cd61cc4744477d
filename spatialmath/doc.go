// Package spatialmath defines poses and orientations for kinematics. Points are r3 vectors and
// rotations are unit quaternions from gonum.
package spatialmath
