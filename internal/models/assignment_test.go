package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectTypeMinInstructors(t *testing.T) {
	assert.Equal(t, 2, ProjectTypeBitirme.MinInstructors())
	assert.Equal(t, 1, ProjectTypeAra.MinInstructors())
	assert.Equal(t, 1, ProjectType("").MinInstructors())
}

func TestAssignmentResponsibleID(t *testing.T) {
	assert.Equal(t, 7, Assignment{Instructors: []int{7, 3}}.ResponsibleID())
	assert.Zero(t, Assignment{}.ResponsibleID())
}

func TestAssignmentHasInstructor(t *testing.T) {
	a := Assignment{Instructors: []int{1, 2}}
	assert.True(t, a.HasInstructor(2))
	assert.False(t, a.HasInstructor(3))
}

func TestCloneScheduleIsDeep(t *testing.T) {
	original := []Assignment{{ProjectID: 1, Instructors: []int{1, 2}}}
	clone := CloneSchedule(original)

	clone[0].Instructors[1] = 9
	clone[0].TimeslotID = 5

	assert.Equal(t, 2, original[0].Instructors[1])
	assert.Zero(t, original[0].TimeslotID)
}
