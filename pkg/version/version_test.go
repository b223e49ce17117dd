package version

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stamp(t *testing.T, v, commit string) {
	oldVersion, oldCommit := TranslatorVersion, GitCommit
	TranslatorVersion, GitCommit = v, commit
	t.Cleanup(func() { TranslatorVersion, GitCommit = oldVersion, oldCommit })
}

func TestSemver(t *testing.T) {
	for _, tt := range []struct {
		Name     string
		Version  string
		Expected semver.Version
		Error    bool
	}{
		{Name: "default", Version: "0.1.0", Expected: semver.MustParse("0.1.0")},
		{Name: "prefixed", Version: "v1.2.3", Expected: semver.MustParse("1.2.3")},
		{Name: "prerelease", Version: "2.0.0-rc.1", Expected: semver.MustParse("2.0.0-rc.1")},
		{Name: "garbage", Version: "not-a-version", Error: true},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			stamp(t, tt.Version, "")
			v, err := Semver()
			if tt.Error {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.Expected.EQ(v), v.String())
		})
	}
}

func TestString(t *testing.T) {
	stamp(t, "v1.4.0", "abc123")
	assert.Equal(t, "Translator Version: 1.4.0\n Git commit: abc123\n", String())

	stamp(t, "dev", "")
	assert.Equal(t, "Translator Version: dev\n Git commit: unknown\n", String())
}
