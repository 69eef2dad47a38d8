package version_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/specio/pkg/version"
)

func TestString(t *testing.T) {
	version.InitBinaryVersion()

	s := version.String()
	assert.True(t, strings.HasPrefix(s, "specio "+version.Version+" "), s)
	assert.Contains(t, s, "commit: "+version.Commit)
	assert.NotEmpty(t, version.Date)
}
