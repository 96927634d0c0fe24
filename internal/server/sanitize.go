package server

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"techcorp/internal/models"
)

// stripTags detects markup in free text. Text is stored as submitted and
// escaped by the templates when rendered.
var stripTags = bluemonday.StrictPolicy()

// containsMarkup reports whether s holds a complete tag that the strict
// policy would remove. A lone "<", as in "x<y", is plain text.
func containsMarkup(s string) bool {
	open := strings.Index(s, "<")
	if open < 0 || !strings.Contains(s[open:], ">") {
		return false
	}
	return html.UnescapeString(stripTags.Sanitize(s)) != s
}

// rejectMarkup takes field name and value pairs and fails on the first value
// carrying markup.
func rejectMarkup(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if containsMarkup(pairs[i+1]) {
			return fmt.Errorf("%s must not contain markup", pairs[i])
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func checkUser(in models.UserInput) error {
	return rejectMarkup("name", in.Name)
}

func checkUserPatch(p models.UserPatch) error {
	return rejectMarkup("name", deref(p.Name))
}

func checkProject(in models.ProjectInput) error {
	return rejectMarkup("name", in.Name, "description", in.Description)
}

func checkProjectPatch(p models.ProjectPatch) error {
	return rejectMarkup("name", deref(p.Name), "description", deref(p.Description))
}

func checkBacklogItem(in models.BacklogItemInput) error {
	return rejectMarkup("title", in.Title, "description", in.Description)
}

func checkBacklogPatch(p models.BacklogItemPatch) error {
	return rejectMarkup("title", deref(p.Title), "description", deref(p.Description))
}

func checkDailyUpdate(in models.DailyUpdateInput) error {
	return rejectMarkup("member", in.Member, "yesterday", in.Yesterday, "today", in.Today, "blockers", in.Blockers)
}

func checkRetroItem(in models.RetroItemInput) error {
	return rejectMarkup("content", in.Content)
}

func checkRetroPatch(p models.RetroItemPatch) error {
	return rejectMarkup("content", deref(p.Content))
}

func checkApplication(app models.Application) error {
	return rejectMarkup("name", app.Name, "phone", app.Phone, "message", app.Message)
}
