package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"home.html", "admin.html", "users.html", "projects.html", "apply.html", "scrum.html", "notfound.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestHomeRendersServices(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "home.html", HomeContent()))
	assert.Contains(t, buf.String(), "Data Analytics")
	assert.Contains(t, buf.String(), "contact@techcorp.jp")
	assert.Len(t, HomeContent().Services, 6)
}
