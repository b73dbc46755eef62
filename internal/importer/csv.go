package importer

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/models"
)

// Files names the four CSV inputs describing one problem instance.
type Files struct {
	Projects    string
	Instructors string
	Classrooms  string
	Timeslots   string
}

// LoadProblem reads and parses the CSV files into a problem request.
func LoadProblem(files Files) (dto.ProblemRequest, error) {
	var req dto.ProblemRequest

	if err := loadCSV(files.Projects, &req.Projects); err != nil {
		return req, err
	}
	if err := loadCSV(files.Instructors, &req.Instructors); err != nil {
		return req, err
	}
	if err := loadCSV(files.Classrooms, &req.Classrooms); err != nil {
		return req, err
	}
	if err := loadCSV(files.Timeslots, &req.Timeslots); err != nil {
		return req, err
	}

	normalize(&req)
	return req, nil
}

func loadCSV(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// normalize fills the defaults CSV rows commonly omit.
func normalize(req *dto.ProblemRequest) {
	for i := range req.Classrooms {
		if req.Classrooms[i].Capacity <= 0 {
			req.Classrooms[i].Capacity = 20
		}
	}
	for i := range req.Projects {
		if req.Projects[i].Type == "" {
			req.Projects[i].Type = models.ProjectTypeAra
		}
	}
}
