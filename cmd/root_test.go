package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redjax/upkeep/internal/version"
)

func TestDebugLogPathUsesUserCacheDir(t *testing.T) {
	got := debugLogPath()

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		assert.Equal(t, "upkeep.log", got)
		return
	}

	assert.Equal(t, filepath.Join(cacheDir, version.Package, "upkeep.log"), got,
		"debug log lives next to the blacklist cache, not the working directory")
}
