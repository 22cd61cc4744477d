package constraintsamplers

import (
	"github.com/samber/lo"

	"github.com/ipa-fxm-rc/moveit-core/referenceframe"
)

// coverageMap records which of a group's variables have a joint constraint.
type coverageMap struct {
	variables []string
	covered   map[string]bool
}

func newCoverageMap(group *referenceframe.JointGroup) *coverageMap {
	cm := &coverageMap{variables: group.VariableNames(), covered: map[string]bool{}}
	for _, v := range cm.variables {
		cm.covered[v] = false
	}
	return cm
}

// mark covers a variable. It returns false if the variable is not in the group.
func (cm *coverageMap) mark(variable string) bool {
	if _, ok := cm.covered[variable]; !ok {
		return false
	}
	cm.covered[variable] = true
	return true
}

func (cm *coverageMap) full() bool {
	return len(cm.variables) > 0 && len(cm.uncovered()) == 0
}

func (cm *coverageMap) uncovered() []string {
	return lo.Filter(cm.variables, func(v string, _ int) bool { return !cm.covered[v] })
}
