package referenceframe

import (
	"testing"

	"go.viam.com/test"
)

func TestParseJSONFile(t *testing.T) {
	model, err := ParseModelJSONFile("testjson/dual_arm.json", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Name(), test.ShouldEqual, "dual_arm")
	test.That(t, model.RootLink(), test.ShouldEqual, "odom")
	test.That(t, model.VariableCount(), test.ShouldEqual, 10)
	test.That(t, len(model.Groups()), test.ShouldEqual, 5)

	renamed, err := ParseModelJSONFile("testjson/dual_arm.json", "other")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, renamed.Name(), test.ShouldEqual, "other")

	badFiles := []string{
		"testjson/kinematicsloop.json",
		"testjson/worldjoint.json",
		"testjson/worldlink.json",
		"testjson/badsubgroup.json",
	}
	badFilesErrors := []string{
		ErrCircularReference.Error(),
		NewReservedWordError("joint", "world").Error(),
		NewReservedWordError("link", "world").Error(),
		`subgroup "outer" of "inner" contains joint "a" outside the group`,
	}

	for i, f := range badFiles {
		t.Run(f, func(t *testing.T) {
			_, err := ParseModelJSONFile(f, "")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldEqual, badFilesErrors[i])
		})
	}

	_, err = UnmarshalModelJSON(nil, "")
	test.That(t, err, test.ShouldBeError, ErrNoModelInformation)
}

func TestJointConfigErrors(t *testing.T) {
	cfg := JointConfig{ID: "j", Type: RevoluteJoint, Parent: "a", Child: "b", Min: -1, Max: 1}
	_, err := cfg.ParseConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "non-zero axis")

	cfg = JointConfig{ID: "j", Type: PlanarJoint, Parent: "a", Child: "b", Limits: []Limit{{-1, 1}}}
	_, err = cfg.ParseConfig()
	test.That(t, err, test.ShouldNotBeNil)

	cfg = JointConfig{ID: "j", Type: "spherical", Parent: "a", Child: "b"}
	_, err = cfg.ParseConfig()
	test.That(t, err, test.ShouldNotBeNil)
}
