package models

// Application is a developer entry submitted from the recruiting form.
// Entries are not stored.
type Application struct {
	Name         string   `json:"name" form:"name" binding:"required"`
	Email        string   `json:"email" form:"email" binding:"required,email"`
	Phone        string   `json:"phone" form:"phone"`
	Experience   string   `json:"experience" form:"experience" binding:"required,experience"`
	Skills       []string `json:"skills" form:"skills" binding:"dive,skill"`
	Availability string   `json:"availability" form:"availability" binding:"required,availability"`
	Message      string   `json:"message" form:"message"`
}

// SkillOptions lists the skills an applicant can tick.
var SkillOptions = []string{
	"JavaScript",
	"TypeScript",
	"React",
	"Next.js",
	"Node.js",
	"Python",
	"PHP",
	"Java",
	"SQL",
	"MongoDB",
	"AWS",
	"Docker",
	"Git",
}

// ExperienceOptions lists the selectable years-of-experience brackets.
var ExperienceOptions = []string{"none", "<1y", "1-3y", "3-5y", "5y+"}

// AvailabilityOptions lists the selectable working arrangements.
var AvailabilityOptions = []string{"full-time", "part-time", "freelance", "internship", "remote"}

// Contains reports whether v is in options.
func Contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
