package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	v, c, d := fromBuildInfo(info, "dev", "none", "unknown")
	assert.Equal(t, "v1.2.3", v)
	assert.Equal(t, "0123456", c)
	assert.Equal(t, "2026-01-02T03:04:05Z", d)
}

func TestFromBuildInfo_Devel(t *testing.T) {
	info := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
	}

	v, c, d := fromBuildInfo(info, "dev", "none", "unknown")
	assert.Equal(t, "dev", v)
	assert.Equal(t, "abc", c)
	assert.Equal(t, "unknown", d)
}

func TestInfo(t *testing.T) {
	assert.True(t, strings.HasPrefix(Info(), "csel "+Short()+" (commit: "))
}
