package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsCompleteProfile(t *testing.T) {
	t.Parallel()

	require.NoError(t, newsProfile().Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()

	p := SiteProfile{Name: "empty", SeedURL: "ftp://x.test", LinkPattern: "[", TitleSelector: "h1"}
	err := p.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		`site "empty"`,
		`unsupported scheme "ftp"`,
		"invalid link pattern",
		"body selector is required",
		"author selector is required",
		"date selector is required",
	} {
		assert.Contains(t, msg, want)
	}
	assert.NotContains(t, msg, "title selector")
}

func TestParseSeedURL(t *testing.T) {
	t.Parallel()

	_, err := parseSeedURL("")
	assert.Error(t, err)
	_, err = parseSeedURL("https://")
	assert.Error(t, err)
	u, err := parseSeedURL(" https://www.bbc.com ")
	require.NoError(t, err)
	assert.Equal(t, "www.bbc.com", u.Host)
}
