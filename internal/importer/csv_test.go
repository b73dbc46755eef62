package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ciriera/capstone-planner/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProblem(t *testing.T) {
	dir := t.TempDir()

	files := Files{
		Projects: writeFile(t, dir, "projects.csv",
			"id,type,responsible_id,is_makeup\n1,bitirme,1,false\n2,,2,true\n"),
		Instructors: writeFile(t, dir, "instructors.csv",
			"id,category\n1,instructor\n2,assistant\n"),
		Classrooms: writeFile(t, dir, "classrooms.csv",
			"id,capacity\n1,30\n2,0\n"),
		Timeslots: writeFile(t, dir, "timeslots.csv",
			"id,start_time,end_time,is_morning,order_index\n1,09:00,09:50,true,0\n2,13:00,13:50,false,1\n"),
	}

	req, err := LoadProblem(files)
	require.NoError(t, err)

	require.Len(t, req.Projects, 2)
	assert.Equal(t, models.ProjectTypeBitirme, req.Projects[0].Type)
	assert.True(t, req.Projects[1].IsMakeup)
	// Missing type defaults to interim.
	assert.Equal(t, models.ProjectTypeAra, req.Projects[1].Type)

	require.Len(t, req.Instructors, 2)
	assert.Equal(t, models.CategoryAssistant, req.Instructors[1].Category)

	require.Len(t, req.Classrooms, 2)
	assert.Equal(t, 30, req.Classrooms[0].Capacity)
	// Zero capacity falls back to the default of 20.
	assert.Equal(t, 20, req.Classrooms[1].Capacity)

	require.Len(t, req.Timeslots, 2)
	assert.True(t, req.Timeslots[0].IsMorning)
	assert.Equal(t, 1, req.Timeslots[1].OrderIndex)
}

func TestLoadProblemMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProblem(Files{
		Projects:    filepath.Join(dir, "missing.csv"),
		Instructors: filepath.Join(dir, "missing.csv"),
		Classrooms:  filepath.Join(dir, "missing.csv"),
		Timeslots:   filepath.Join(dir, "missing.csv"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestLoadProblemMalformedCSV(t *testing.T) {
	dir := t.TempDir()

	files := Files{
		Projects:    writeFile(t, dir, "projects.csv", "id,type\n\"unterminated\n"),
		Instructors: writeFile(t, dir, "instructors.csv", "id,category\n1,instructor\n"),
		Classrooms:  writeFile(t, dir, "classrooms.csv", "id,capacity\n1,20\n"),
		Timeslots:   writeFile(t, dir, "timeslots.csv", "id,start_time,end_time,is_morning,order_index\n1,09:00,09:50,true,0\n"),
	}

	_, err := LoadProblem(files)
	require.Error(t, err)
}
