package referenceframe

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/ipa-fxm-rc/moveit-core/spatialmath"
)

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name   string        `json:"name"`
	Joints []JointConfig `json:"joints"`
	Groups []GroupConfig `json:"groups,omitempty"`
}

// JointConfig describes one joint. Single-DOF joints use Min/Max; planar joints list their three
// limits (x, y, theta) in Limits.
type JointConfig struct {
	ID     string      `json:"id"`
	Type   JointType   `json:"type"`
	Parent string      `json:"parent"`
	Child  string      `json:"child"`
	Axis   r3.Vector   `json:"axis"`
	Origin *PoseConfig `json:"origin,omitempty"`
	Min    float64     `json:"min"`
	Max    float64     `json:"max"`
	Limits []Limit     `json:"limits,omitempty"`
}

// PoseConfig is a translation and an axis-angle rotation.
type PoseConfig struct {
	Translation r3.Vector     `json:"translation"`
	Orientation *spatial.R4AA `json:"orientation,omitempty"`
}

// GroupConfig describes a joint group. Subgroups must be listed before the groups that use them.
type GroupConfig struct {
	Name      string   `json:"name"`
	Joints    []string `json:"joints"`
	Subgroups []string `json:"subgroups,omitempty"`
}

// ParseConfig converts the JointConfig into a Joint.
func (cfg *JointConfig) ParseConfig() (*Joint, error) {
	origin := spatial.NewZeroPose()
	if cfg.Origin != nil {
		var o spatial.Orientation
		if cfg.Origin.Orientation != nil {
			o = cfg.Origin.Orientation
		}
		origin = spatial.NewPose(cfg.Origin.Translation, o)
	}

	var limits []Limit
	switch cfg.Type {
	case PlanarJoint:
		limits = cfg.Limits
	case FixedJoint, ContinuousJoint:
	default:
		limits = []Limit{{Min: cfg.Min, Max: cfg.Max}}
	}
	return NewJoint(cfg.ID, cfg.Type, cfg.Parent, cfg.Child, cfg.Axis, origin, limits)
}

// ParseConfig converts the ModelConfigJSON struct into a full Model with the name modelName.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (*Model, error) {
	if modelName == "" {
		modelName = cfg.Name
	}

	joints := make([]*Joint, 0, len(cfg.Joints))
	for i := range cfg.Joints {
		j, err := cfg.Joints[i].ParseConfig()
		if err != nil {
			return nil, err
		}
		joints = append(joints, j)
	}

	model, err := NewModel(modelName, joints)
	if err != nil {
		return nil, err
	}
	for _, g := range cfg.Groups {
		if _, err := model.AddGroup(g.Name, g.Joints, g.Subgroups); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the
// name of the model, will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*Model, error) {
	// empty data probably means that the robot has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfigJSON{}
	if err := json.Unmarshal(jsonData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return m.ParseConfig(modelName)
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (*Model, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}
