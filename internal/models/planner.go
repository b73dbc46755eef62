package models

// ProjectType distinguishes final (bitirme) from interim (ara) projects.
type ProjectType string

const (
	ProjectTypeBitirme ProjectType = "bitirme"
	ProjectTypeAra     ProjectType = "ara"
)

// MinInstructors returns the minimum panel size the project type demands:
// a final project needs the responsible plus at least one jury member, an
// interim project only the responsible.
func (t ProjectType) MinInstructors() int {
	if t == ProjectTypeBitirme {
		return 2
	}
	return 1
}

// InstructorCategory separates faculty from research assistants. Faculty are
// preferred when juries are drawn.
type InstructorCategory string

const (
	CategoryInstructor InstructorCategory = "instructor"
	CategoryAssistant  InstructorCategory = "assistant"
)

// Project is an immutable input record. Every project has exactly one
// responsible instructor.
type Project struct {
	ID            int         `json:"id" csv:"id"`
	Type          ProjectType `json:"type" csv:"type"`
	ResponsibleID int         `json:"responsible_id" csv:"responsible_id"`
	IsMakeup      bool        `json:"is_makeup" csv:"is_makeup"`
}

// Instructor carries load counters that accrue while a solution is built.
type Instructor struct {
	ID           int                `json:"id" csv:"id"`
	Category     InstructorCategory `json:"category" csv:"category"`
	BitirmeCount int                `json:"bitirme_count" csv:"-"`
	AraCount     int                `json:"ara_count" csv:"-"`
	TotalLoad    int                `json:"total_load" csv:"-"`
}

// Classroom is a shared read-only resource keyed by (classroom, timeslot)
// pairs. Capacity is a soft usage cap.
type Classroom struct {
	ID       int `json:"id" csv:"id"`
	Capacity int `json:"capacity" csv:"capacity"`
}

// TimeSlot is one schedulable session window. OrderIndex imposes the total
// order used for gap detection.
type TimeSlot struct {
	ID         int    `json:"id" csv:"id"`
	StartTime  string `json:"start_time" csv:"start_time"`
	EndTime    string `json:"end_time" csv:"end_time"`
	IsMorning  bool   `json:"is_morning" csv:"is_morning"`
	OrderIndex int    `json:"order_index" csv:"order_index"`
}
