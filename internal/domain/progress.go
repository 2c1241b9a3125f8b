package domain

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
)

// ProgressDetail tracks one enrolled course. TotalLessons is fixed when the
// user enrolls and is never recomputed.
type ProgressDetail struct {
	CompletedLessons map[string]struct{}
	TotalLessons     int
}

// NewProgressDetail creates a detail with nothing completed yet.
func NewProgressDetail(totalLessons int) ProgressDetail {
	return ProgressDetail{
		CompletedLessons: map[string]struct{}{},
		TotalLessons:     totalLessons,
	}
}

// IsCompleted reports whether lessonID is marked complete.
func (p ProgressDetail) IsCompleted(lessonID string) bool {
	_, ok := p.CompletedLessons[lessonID]
	return ok
}

// CompletedCount is the number of completed lessons.
func (p ProgressDetail) CompletedCount() int { return len(p.CompletedLessons) }

// CompletedIDs returns the completed lesson ids in sorted order.
func (p ProgressDetail) CompletedIDs() []string {
	return slices.Sorted(maps.Keys(p.CompletedLessons))
}

// Percent is round(100 * completed / total), or 0 when the course has no
// lessons. The value is not clamped.
func (p ProgressDetail) Percent() int {
	if p.TotalLessons == 0 {
		return 0
	}
	return int(math.Round(float64(len(p.CompletedLessons)) / float64(p.TotalLessons) * 100))
}

// Toggled returns a copy with lessonID's membership flipped.
func (p ProgressDetail) Toggled(lessonID string) ProgressDetail {
	completed := make(map[string]struct{}, len(p.CompletedLessons)+1)
	for id := range p.CompletedLessons {
		completed[id] = struct{}{}
	}
	if _, ok := completed[lessonID]; ok {
		delete(completed, lessonID)
	} else {
		completed[lessonID] = struct{}{}
	}
	return ProgressDetail{CompletedLessons: completed, TotalLessons: p.TotalLessons}
}

// progressDetailJSON is the persisted shape. The completed set is written as
// an explicit list.
type progressDetailJSON struct {
	CompletedLessons []string `json:"completedLessons"`
	TotalLessons     int      `json:"totalLessons"`
}

// MarshalJSON encodes the completed set as a sorted list.
func (p ProgressDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(progressDetailJSON{
		CompletedLessons: p.CompletedIDs(),
		TotalLessons:     p.TotalLessons,
	})
}

// UnmarshalJSON decodes the list form back into a set.
func (p *ProgressDetail) UnmarshalJSON(data []byte) error {
	var raw progressDetailJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.TotalLessons = raw.TotalLessons
	p.CompletedLessons = make(map[string]struct{}, len(raw.CompletedLessons))
	for _, id := range raw.CompletedLessons {
		p.CompletedLessons[id] = struct{}{}
	}
	return nil
}

// CourseProgress maps course id to its progress detail. A course is enrolled
// exactly when it has an entry. Updates return a new map.
type CourseProgress map[string]ProgressDetail

// Get returns the detail for courseID.
func (c CourseProgress) Get(courseID string) (ProgressDetail, bool) {
	d, ok := c[courseID]
	return d, ok
}

// IsEnrolled reports whether courseID has a progress detail.
func (c CourseProgress) IsEnrolled(courseID string) bool {
	_, ok := c[courseID]
	return ok
}

// Percent returns the completion percentage for courseID, 0 when not enrolled.
func (c CourseProgress) Percent(courseID string) int {
	d, ok := c[courseID]
	if !ok {
		return 0
	}
	return d.Percent()
}

// CourseIDs returns the enrolled course ids in sorted order.
func (c CourseProgress) CourseIDs() []string {
	return slices.Sorted(maps.Keys(c))
}

// WithEnrollment returns a copy with a fresh detail for courseID. An existing
// detail is kept as is.
func (c CourseProgress) WithEnrollment(courseID string, totalLessons int) CourseProgress {
	if c.IsEnrolled(courseID) {
		return c
	}
	out := c.shallowCopy()
	out[courseID] = NewProgressDetail(totalLessons)
	return out
}

// WithToggled returns a copy with lessonID flipped in courseID's detail. The
// second result is false, and the receiver is returned, when courseID is not
// enrolled.
func (c CourseProgress) WithToggled(courseID, lessonID string) (CourseProgress, bool) {
	d, ok := c[courseID]
	if !ok {
		return c, false
	}
	out := c.shallowCopy()
	out[courseID] = d.Toggled(lessonID)
	return out, true
}

// Clone returns a deep copy.
func (c CourseProgress) Clone() CourseProgress {
	out := make(CourseProgress, len(c))
	for id, d := range c {
		out[id] = ProgressDetail{
			CompletedLessons: maps.Clone(d.CompletedLessons),
			TotalLessons:     d.TotalLessons,
		}
	}
	return out
}

func (c CourseProgress) shallowCopy() CourseProgress {
	out := make(CourseProgress, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}
