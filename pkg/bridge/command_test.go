package bridge

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/CompassSecurity/bridgerun/pkg/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPrepareCommandBlackDuck(t *testing.T) {
	tempDir := t.TempDir()
	cfg := scan.BlackDuck{
		URL:               "https://blackduck.example.com",
		APIToken:          "token",
		ScanFull:          true,
		FailureSeverities: []string{"critical", "BLOCKER"},
	}

	cmd, err := CommandBuilder{}.PrepareCommand(cfg, tempDir)
	require.NoError(t, err)

	inputFile := filepath.Join(tempDir, "blackduck_input.json")
	assert.Equal(t, Command{"--stage", "blackduck", "--input", inputFile}, cmd)
	assert.Equal(t, "--stage blackduck --input "+inputFile, cmd.String())

	content, err := os.ReadFile(inputFile)
	require.NoError(t, err)
	doc := string(content)
	assert.Equal(t, "https://blackduck.example.com", gjson.Get(doc, "data.blackduck.url").String())
	assert.Equal(t, "token", gjson.Get(doc, "data.blackduck.token").String())
	assert.True(t, gjson.Get(doc, "data.blackduck.scan.full").Bool())
	assert.Equal(t, `["CRITICAL","BLOCKER"]`, gjson.Get(doc, "data.blackduck.scan.failure.severities").Raw)
	assert.False(t, gjson.Get(doc, "data.blackduck.install").Exists())
	assert.False(t, gjson.Get(doc, "bridge.diagnostics").Bool())
	assert.Equal(t, filepath.Join(tempDir, "output"), gjson.Get(doc, "bridge.output.directory").String())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(inputFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestPrepareCommandPolarisWithDiagnostics(t *testing.T) {
	tempDir := t.TempDir()
	cfg := scan.Polaris{
		ServerURL:       "https://polaris.example.com",
		AccessToken:     "access",
		ApplicationName: "app",
		ProjectName:     "proj",
		AssessmentTypes: []string{"SCA", "sast"},
	}

	cmd, err := CommandBuilder{Diagnostics: true, OutputDir: "/work/.bridge"}.PrepareCommand(cfg, tempDir)
	require.NoError(t, err)
	assert.Equal(t, Command{"--stage", "polaris", "--input", filepath.Join(tempDir, "polaris_input.json"), "--diagnostics"}, cmd)

	content, err := os.ReadFile(filepath.Join(tempDir, "polaris_input.json"))
	require.NoError(t, err)
	doc := string(content)
	assert.Equal(t, "access", gjson.Get(doc, "data.polaris.accesstoken").String())
	assert.Equal(t, "app", gjson.Get(doc, "data.polaris.application.name").String())
	assert.Equal(t, `["SCA","SAST"]`, gjson.Get(doc, "data.polaris.assessment.types").Raw)
	assert.True(t, gjson.Get(doc, "bridge.diagnostics").Bool())
	assert.Equal(t, "/work/.bridge", gjson.Get(doc, "bridge.output.directory").String())
}

func TestPrepareCommandCoverity(t *testing.T) {
	tempDir := t.TempDir()
	cfg := scan.Coverity{
		URL:            "https://coverity.example.com",
		User:           "user",
		Passphrase:     "pass",
		ProjectName:    "proj",
		StreamName:     "stream",
		PolicyView:     "Outstanding Issues",
		RepositoryName: "repo",
	}

	cmd, err := CommandBuilder{}.PrepareCommand(cfg, tempDir)
	require.NoError(t, err)
	assert.Equal(t, "connect", cmd[1])
	assert.Equal(t, filepath.Join(tempDir, "coverity_input.json"), cmd[3])

	content, err := os.ReadFile(cmd[3])
	require.NoError(t, err)
	doc := string(content)
	assert.Equal(t, "user", gjson.Get(doc, "data.coverity.connect.user.name").String())
	assert.Equal(t, "pass", gjson.Get(doc, "data.coverity.connect.user.password").String())
	assert.Equal(t, "stream", gjson.Get(doc, "data.coverity.connect.stream.name").String())
	assert.Equal(t, "Outstanding Issues", gjson.Get(doc, "data.coverity.connect.policy.view").String())
	assert.Equal(t, "repo", gjson.Get(doc, "data.coverity.repository.name").String())
	assert.False(t, gjson.Get(doc, "data.coverity.branch").Exists())
	assert.False(t, gjson.Get(doc, "data.blackduck").Exists())
}

func TestPrepareCommandIsDeterministic(t *testing.T) {
	tempDir := t.TempDir()
	cfg := scan.Coverity{URL: "u", User: "a", Passphrase: "b", ProjectName: "c", StreamName: "d", BranchName: "main"}
	builder := CommandBuilder{OutputDir: "/out"}

	first, err := builder.PrepareCommand(cfg, tempDir)
	require.NoError(t, err)
	firstContent, err := os.ReadFile(first[3])
	require.NoError(t, err)

	second, err := builder.PrepareCommand(cfg, tempDir)
	require.NoError(t, err)
	secondContent, err := os.ReadFile(second[3])
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, string(firstContent), string(secondContent))
}

func TestPrepareCommandMissingTempDir(t *testing.T) {
	_, err := CommandBuilder{}.PrepareCommand(scan.BlackDuck{URL: "u", APIToken: "t"}, filepath.Join(t.TempDir(), "gone"))
	assert.ErrorContains(t, err, "failed writing bridge input file")
}
