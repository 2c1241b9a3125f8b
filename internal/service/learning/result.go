package learning

// CourseSummary is the progress of one enrolled course.
type CourseSummary struct {
	CourseID  string `json:"courseId"`
	Title     string `json:"title"`
	Percent   int    `json:"percent"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Overview aggregates progress across enrolled courses.
type Overview struct {
	Courses        []CourseSummary `json:"courses"`
	AveragePercent int             `json:"averagePercent"`
	XP             int             `json:"xp"`
	Level          int             `json:"level"`
	Streak         int             `json:"streak"`
}
