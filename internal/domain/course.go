package domain

import "slices"

// Lesson is one item of a module. Content is empty until it is generated on
// first request.
//
// Completed is informational only. Progress is tracked in CourseProgress; the
// cached lesson always carries false and the flag is derived on read with
// Course.WithCompletion.
type Lesson struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	IsAssessment bool   `json:"isAssessment"`
	Content      string `json:"content,omitempty"`
	Completed    bool   `json:"completed"`
}

// HasContent reports whether lesson content has already been generated.
func (l Lesson) HasContent() bool { return l.Content != "" }

// Module is one week of a course. Lesson order is curriculum order.
type Module struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	ImageURL string   `json:"imageUrl"`
	Lessons  []Lesson `json:"lessons"`
}

// Course is a catalog record, optionally extended with a generated outline.
// Modules is nil until the outline has been generated.
type Course struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	ImageURL        string   `json:"imageUrl"`
	ModuleImagePool []string `json:"moduleImagePool,omitempty"`
	Modules         []Module `json:"modules,omitempty"`
}

// HasOutline reports whether the course carries a generated, non-empty outline.
func (c Course) HasOutline() bool { return len(c.Modules) > 0 }

// TotalLessons counts lessons across all modules. A course without an outline
// has zero lessons.
func (c Course) TotalLessons() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// Clone returns a deep copy of c.
func (c Course) Clone() Course {
	c.ModuleImagePool = slices.Clone(c.ModuleImagePool)
	c.Modules = cloneModules(c.Modules)
	return c
}

// WithModules returns a copy of c with the given outline attached. Lessons are
// copied with Completed reset to false.
func (c Course) WithModules(modules []Module) Course {
	out := c.Clone()
	out.Modules = cloneModules(modules)
	for i := range out.Modules {
		for j := range out.Modules[i].Lessons {
			out.Modules[i].Lessons[j].Completed = false
		}
	}
	return out
}

// FindLesson locates a lesson by module and lesson id.
func (c Course) FindLesson(moduleID, lessonID string) (Lesson, bool) {
	for _, m := range c.Modules {
		if m.ID != moduleID {
			continue
		}
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return l, true
			}
		}
		return Lesson{}, false
	}
	return Lesson{}, false
}

// HasLesson reports whether any module contains lessonID.
func (c Course) HasLesson(lessonID string) bool {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return true
			}
		}
	}
	return false
}

// WithLesson returns a copy of c in which the lesson with the same id inside
// moduleID is replaced by lesson. The receiver is left untouched.
func (c Course) WithLesson(moduleID string, lesson Lesson) Course {
	out := c
	out.ModuleImagePool = slices.Clone(c.ModuleImagePool)
	out.Modules = make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		if m.ID != moduleID {
			out.Modules[i] = m
			continue
		}
		lessons := make([]Lesson, len(m.Lessons))
		for j, l := range m.Lessons {
			if l.ID == lesson.ID {
				lessons[j] = lesson
			} else {
				lessons[j] = l
			}
		}
		m.Lessons = lessons
		out.Modules[i] = m
	}
	return out
}

// WithCompletion returns a deep copy of c with each lesson's Completed flag
// set from isCompleted.
func (c Course) WithCompletion(isCompleted func(lessonID string) bool) Course {
	out := c.Clone()
	for i := range out.Modules {
		for j := range out.Modules[i].Lessons {
			l := &out.Modules[i].Lessons[j]
			l.Completed = isCompleted(l.ID)
		}
	}
	return out
}

func cloneModules(modules []Module) []Module {
	if modules == nil {
		return nil
	}
	out := make([]Module, len(modules))
	for i, m := range modules {
		m.Lessons = slices.Clone(m.Lessons)
		out[i] = m
	}
	return out
}

// CourseCache maps course id to the most complete course record generated so
// far. It is treated as immutable: updates return a new map.
type CourseCache map[string]Course

// Get returns the cached record for courseID.
func (c CourseCache) Get(courseID string) (Course, bool) {
	course, ok := c[courseID]
	return course, ok
}

// With returns a copy of the cache with course stored under its id.
func (c CourseCache) With(course Course) CourseCache {
	out := make(CourseCache, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[course.ID] = course
	return out
}
