// Package provider holds the types exchanged with content generators.
package provider

// Chat roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one message of a tutor conversation.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// OutlineRequest describes the course an outline is generated for.
type OutlineRequest struct {
	CourseTitle string
	ImagePool   []string
}

// LessonRequest describes the lesson whose content is generated.
type LessonRequest struct {
	CourseTitle  string
	LessonTitle  string
	IsAssessment bool
}
