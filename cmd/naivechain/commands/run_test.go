package commands

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mosaicnetworks/naivechain/src/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "naivechain")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	logFile := filepath.Join(dir, "node.log")

	toml := "log = \"warn\"\nlog-file = \"" + filepath.ToSlash(logFile) + "\"\nqueue-size = 8\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, config.DefaultConfigFile+".toml"), []byte(toml), 0600))

	cmd := NewRunCmd()
	require.NoError(t, cmd.Flags().Set("datadir", dir))

	require.NoError(t, loadConfig(cmd, nil))

	assert.Equal(t, "warn", _config.LogLevel)
	assert.Equal(t, logFile, _config.LogFile)
	assert.Equal(t, 8, _config.QueueSize)

	logger := _config.Logger()
	logger.Logger.Out = ioutil.Discard

	assert.Equal(t, logrus.WarnLevel, logger.Logger.Level)

	logger.Warn("from config file")

	content, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), `"msg":"from config file"`))
}
