package repository

import "github.com/okian/tourdesk/internal/domain/model"

var demoGuides = []model.Request{
	{Name: "Emma Johnson", Email: "emma@example.com", Message: "Looking forward to guiding."},
	{Name: "Liam Smith", Email: "liam@example.com", Message: "Excited to join the team."},
	{Name: "Olivia Williams", Email: "olivia@example.com", Message: "Passionate about tours."},
	{Name: "Noah Brown", Email: "noah@example.com", Message: "Eager to get started."},
	{Name: "Ava Davis", Email: "ava@example.com", Message: "Love sharing knowledge."},
	{Name: "Elijah Miller", Email: "elijah@example.com", Message: "Can’t wait to guide tours."},
	{Name: "Sophia Wilson", Email: "sophia@example.com", Message: "Tour guiding is my passion."},
	{Name: "James Taylor", Email: "james@example.com", Message: "Ready to start guiding."},
	{Name: "Isabella Anderson", Email: "isabella@example.com", Message: "Happy to be a part of this."},
	{Name: "Benjamin Thomas", Email: "benjamin@example.com", Message: "Let’s start the tours."},
}

// SeedRequests returns the demo collection: ten guides, each listed twice.
// The slice is freshly allocated on every call.
func SeedRequests() []model.Request {
	out := make([]model.Request, 0, 2*len(demoGuides))
	out = append(out, demoGuides...)
	out = append(out, demoGuides...)
	return out
}
