package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRootFlags(t *testing.T, level, config string) {
	t.Helper()
	oldLevel, oldConfig, oldCfg, oldLogLevel := logLevel, configPath, analysisConfig, logrus.GetLevel()
	logLevel, configPath = level, config
	t.Cleanup(func() {
		logLevel, configPath, analysisConfig = oldLevel, oldConfig, oldCfg
		logrus.SetLevel(oldLogLevel)
	})
}

func TestSetup_DefaultsWithoutConfig(t *testing.T) {
	withRootFlags(t, "debug", "")

	require.NoError(t, setup())

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	require.NotNil(t, analysisConfig)
	assert.Equal(t, 20.0, analysisConfig.LowBattery())
}

func TestSetup_LoadsConfigFile(t *testing.T) {
	// GIVEN a config overriding the low battery threshold
	path := filepath.Join(t.TempDir(), "fstscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("low_battery_threshold: 30\nworkers: 2\n"), 0o644))
	withRootFlags(t, "warn", path)

	require.NoError(t, setup())

	assert.Equal(t, 30.0, analysisConfig.LowBattery())
	assert.Equal(t, 2, analysisConfig.WorkerCount())
}

func TestSetup_RejectsUnknownLogLevel(t *testing.T) {
	withRootFlags(t, "loud", "")
	assert.Error(t, setup())
}

func TestSetup_RejectsUnknownConfigKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fstscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("low_battery: 30\n"), 0o644))
	withRootFlags(t, "warn", path)
	assert.Error(t, setup())
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	for _, name := range []string{"topo-distance", "analyze", "summary", "recommend", "watch"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestTopoDistanceCmd_MethodFlagDefault(t *testing.T) {
	f := topoDistanceCmd.Flags().Lookup("method")
	require.NotNil(t, f)
	assert.Equal(t, "detailed", f.DefValue)
	assert.Equal(t, "m", f.Shorthand)
}
