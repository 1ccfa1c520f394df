package critic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumecritic/internal/errors"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"technology", "healthcare", "education", "sales_marketing",
		"finance_accounting", "operations_hr", "arts_media", "service_retail",
	}, reg.Industries())

	for _, bank := range reg.Banks() {
		assert.NotEmpty(t, bank.RequiredSections, bank.Name)
		assert.NotEmpty(t, bank.Terms(), bank.Name)
		assert.GreaterOrEqual(t, len(bank.Cues), minCueVotes, bank.Name)
		assert.NotEmpty(t, bank.Advice, bank.Name)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := MustDefaultRegistry()

	assert.Equal(t, "healthcare", reg.Lookup("HealthCare").Name)
	assert.True(t, reg.Has(" technology "))
	assert.False(t, reg.Has("unknown"))

	fallback := reg.Lookup("underwater_basket_weaving")
	assert.True(t, fallback.IsFallback())
	assert.Same(t, reg.Fallback(), fallback)
	assert.Equal(t, []string{"Experience", "Skills", "Education"}, fallback.RequiredSections)
	assert.Empty(t, fallback.Terms())
}

func TestKeywordBank_TermsAreDeduplicated(t *testing.T) {
	reg, err := LoadRegistry([]byte(`
industries:
  - name: demo
    label: Demo
    requiredSections: [Experience]
    hardSkills: [Go, go, SQL]
    softSkills: [Teamwork, sql]
    extras: [Teamwork, Open Source]
    cues: [gopher, database]
    advice: [Ship it.]
fallback:
  requiredSections: [Experience, Skills, Education]
  advice: [Be specific.]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "SQL", "Teamwork", "Open Source"}, reg.Lookup("demo").Terms())
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "not yaml",
			yaml: "industries: [unclosed",
		},
		{
			name: "empty document",
			yaml: "",
		},
		{
			name: "missing fallback",
			yaml: `
industries:
  - {name: a, label: A, requiredSections: [Experience], hardSkills: [Go], cues: [x, y], advice: [z]}
`,
		},
		{
			name: "no required sections",
			yaml: `
industries:
  - {name: a, label: A, requiredSections: [], hardSkills: [Go], cues: [x, y], advice: [z]}
fallback: {requiredSections: [Experience], advice: [z]}
`,
		},
		{
			name: "duplicate industry",
			yaml: `
industries:
  - {name: a, label: A, requiredSections: [Experience], hardSkills: [Go], cues: [x, y], advice: [z]}
  - {name: a, label: A2, requiredSections: [Experience], hardSkills: [Go], cues: [x, y], advice: [z]}
fallback: {requiredSections: [Experience], advice: [z]}
`,
		},
		{
			name: "reserved name",
			yaml: `
industries:
  - {name: unknown, label: U, requiredSections: [Experience], hardSkills: [Go], cues: [x, y], advice: [z]}
fallback: {requiredSections: [Experience], advice: [z]}
`,
		},
		{
			name: "bad industry key",
			yaml: `
industries:
  - {name: Tech Stuff, label: T, requiredSections: [Experience], hardSkills: [Go], cues: [x, y], advice: [z]}
fallback: {requiredSections: [Experience], advice: [z]}
`,
		},
		{
			name: "single cue",
			yaml: `
industries:
  - {name: a, label: A, requiredSections: [Experience], hardSkills: [Go], cues: [x], advice: [z]}
fallback: {requiredSections: [Experience], advice: [z]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := LoadRegistry([]byte(tt.yaml))
			require.Error(t, err)
			assert.Nil(t, reg)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidKeywordBank))
		})
	}
}

func TestLoadRegistryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banks.yaml")
	require.NoError(t, os.WriteFile(path, defaultBanks, 0o600))

	reg, err := LoadRegistryFile(path)
	require.NoError(t, err)
	assert.Len(t, reg.Industries(), 8)

	_, err = LoadRegistryFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidKeywordBank, appErr.Code)
	assert.Contains(t, appErr.Context, "path")
}
