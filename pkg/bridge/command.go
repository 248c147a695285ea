package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CompassSecurity/bridgerun/pkg/format"
	"github.com/CompassSecurity/bridgerun/pkg/scan"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command is the argument list passed to the bridge executable.
type Command []string

func (c Command) String() string {
	return strings.Join(c, " ")
}

// CommandBuilder turns a scan configuration into a bridge invocation.
type CommandBuilder struct {
	Diagnostics bool
	// OutputDir receives bridge results. Defaults to <tempDir>/output.
	OutputDir string
}

type inputPayload struct {
	Data   payloadData   `json:"data"`
	Bridge bridgeOptions `json:"bridge"`
}

type payloadData struct {
	Polaris   *polarisData   `json:"polaris,omitempty"`
	BlackDuck *blackDuckData `json:"blackduck,omitempty"`
	Coverity  *coverityData  `json:"coverity,omitempty"`
}

type bridgeOptions struct {
	Diagnostics bool      `json:"diagnostics"`
	Output      directory `json:"output"`
}

type named struct {
	Name string `json:"name"`
}

type directory struct {
	Directory string `json:"directory"`
}

type polarisData struct {
	AccessToken string `json:"accesstoken"`
	ServerURL   string `json:"serverUrl"`
	Application named  `json:"application"`
	Project     named  `json:"project"`
	Assessment  struct {
		Types []string `json:"types"`
	} `json:"assessment"`
}

type blackDuckData struct {
	URL     string     `json:"url"`
	Token   string     `json:"token"`
	Install *directory `json:"install,omitempty"`
	Scan    struct {
		Full    bool `json:"full"`
		Failure *struct {
			Severities []string `json:"severities"`
		} `json:"failure,omitempty"`
	} `json:"scan"`
}

type coverityData struct {
	Connect struct {
		User struct {
			Name     string `json:"name"`
			Password string `json:"password"`
		} `json:"user"`
		URL     string `json:"url"`
		Project named  `json:"project"`
		Stream  named  `json:"stream"`
		Policy  *struct {
			View string `json:"view"`
		} `json:"policy,omitempty"`
	} `json:"connect"`
	Install    *directory `json:"install,omitempty"`
	Repository *named     `json:"repository,omitempty"`
	Branch     *named     `json:"branch,omitempty"`
}

// PrepareCommand writes the bridge input file for cfg into tempDir and returns the command
// referencing it. Output is deterministic for identical input.
func (b CommandBuilder) PrepareCommand(cfg scan.Configuration, tempDir string) (Command, error) {
	outputDir := b.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(tempDir, "output")
	}

	payload := inputPayload{
		Bridge: bridgeOptions{Diagnostics: b.Diagnostics, Output: directory{Directory: outputDir}},
	}

	switch c := cfg.(type) {
	case scan.Polaris:
		payload.Data.Polaris = polarisPayload(c)
	case scan.BlackDuck:
		payload.Data.BlackDuck = blackDuckPayload(c)
	case scan.Coverity:
		payload.Data.Coverity = coverityPayload(c)
	default:
		return nil, fmt.Errorf("unsupported scan configuration %T", cfg)
	}

	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed serializing bridge input: %w", err)
	}

	inputFile := filepath.Join(tempDir, string(cfg.Backend())+"_input.json")
	if err := os.WriteFile(inputFile, content, format.FileUserReadWrite); err != nil {
		return nil, fmt.Errorf("failed writing bridge input file: %w", err)
	}

	cmd := Command{"--stage", cfg.Stage(), "--input", inputFile}
	if b.Diagnostics {
		cmd = append(cmd, "--diagnostics")
	}

	log.Debug().Str("backend", string(cfg.Backend())).Str("input", inputFile).Msg("Prepared bridge command")
	return cmd, nil
}

func polarisPayload(c scan.Polaris) *polarisData {
	p := &polarisData{
		AccessToken: c.AccessToken,
		ServerURL:   c.ServerURL,
		Application: named{Name: c.ApplicationName},
		Project:     named{Name: c.ProjectName},
	}
	p.Assessment.Types = upper(c.AssessmentTypes)
	return p
}

func blackDuckPayload(c scan.BlackDuck) *blackDuckData {
	p := &blackDuckData{URL: c.URL, Token: c.APIToken}
	if c.InstallDirectory != "" {
		p.Install = &directory{Directory: c.InstallDirectory}
	}
	p.Scan.Full = c.ScanFull
	if len(c.FailureSeverities) > 0 {
		p.Scan.Failure = &struct {
			Severities []string `json:"severities"`
		}{Severities: upper(c.FailureSeverities)}
	}
	return p
}

func coverityPayload(c scan.Coverity) *coverityData {
	p := &coverityData{}
	p.Connect.User.Name = c.User
	p.Connect.User.Password = c.Passphrase
	p.Connect.URL = c.URL
	p.Connect.Project = named{Name: c.ProjectName}
	p.Connect.Stream = named{Name: c.StreamName}
	if c.PolicyView != "" {
		p.Connect.Policy = &struct {
			View string `json:"view"`
		}{View: c.PolicyView}
	}
	if c.InstallDirectory != "" {
		p.Install = &directory{Directory: c.InstallDirectory}
	}
	if c.RepositoryName != "" {
		p.Repository = &named{Name: c.RepositoryName}
	}
	if c.BranchName != "" {
		p.Branch = &named{Name: c.BranchName}
	}
	return p
}

func upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(v)
	}
	return out
}
