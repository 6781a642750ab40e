// Package cicd renders the Cloud Build configuration files committed to a
// project repository under cicd/. The orchestrator file builds, pushes and
// deploys every service on each trigger run; per-service files cover
// one-off builds of a single service. Rendering is deterministic so a
// second run over an unchanged selection produces byte-identical files.
package cicd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/terraseed/terraseed/internal/models"
)

const (
	// markerPrefix opens every generated file. Files without it are
	// treated as hand-written and never overwritten.
	markerPrefix = "# terraseed:id="

	dockerBuilder = "gcr.io/cloud-builders/docker"
	deployBuilder = "gcr.io/google.com/cloudsdktool/cloud-sdk:slim"

	buildTimeout = "1200s"

	// Builds run as the project's deploy service account, which requires
	// an explicit logging mode.
	loggingMode = "CLOUD_LOGGING_ONLY"
)

// Service describes one deployable unit the pipeline covers.
type Service struct {
	Name       string // Cloud Run service name in prod; other environments get a -<env> suffix
	Type       string // backend or frontend
	Dockerfile string // Dockerfile path relative to the repository root
}

// File is one rendered build configuration.
type File struct {
	Name    string // path relative to the repository root
	Content string
}

// Build mirrors the Cloud Build config schema, restricted to the fields
// the pipeline uses. Explicit structs keep the rendered key order stable.
type Build struct {
	Steps   []Step   `yaml:"steps"`
	Timeout string   `yaml:"timeout,omitempty"`
	Options *Options `yaml:"options,omitempty"`
}

// Step is one build step.
type Step struct {
	ID         string   `yaml:"id,omitempty"`
	Name       string   `yaml:"name"`
	Entrypoint string   `yaml:"entrypoint,omitempty"`
	Args       []string `yaml:"args,omitempty"`
	Env        []string `yaml:"env,omitempty"`
	WaitFor    []string `yaml:"waitFor,omitempty"`
}

// Options is the build-level options block.
type Options struct {
	Logging     string `yaml:"logging,omitempty"`
	MachineType string `yaml:"machineType,omitempty"`
}

// Generator renders build configurations for a set of services.
type Generator struct {
	logger zerolog.Logger
}

// Option adjusts generator construction.
type Option func(*Generator)

// WithLogger substitutes the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator builds a generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger: log.With().Str("component", "cicd").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OrchestratorFile is where triggers point their build at.
const OrchestratorFile = "cicd/cloudbuild.yaml"

// ServiceFile returns the standalone build config path for a service type.
func ServiceFile(serviceType string) string {
	return fmt.Sprintf("cicd/cloudbuild-%s.yaml", serviceType)
}

// RenderAll renders the orchestrator plus one standalone config per
// service type. Services keep their given order in the orchestrator.
func (g *Generator) RenderAll(services []Service) ([]File, error) {
	if len(services) == 0 {
		return nil, &models.ComposeError{Role: "cicd", Reason: "no services to build"}
	}
	for _, svc := range services {
		if svc.Name == "" || svc.Dockerfile == "" {
			return nil, &models.ComposeError{
				Role:       "cicd",
				Identifier: svc.Name,
				Reason:     "service needs a name and a Dockerfile path",
			}
		}
	}

	files := []File{{
		Name:    OrchestratorFile,
		Content: g.render("cloudbuild/orchestrator", orchestratorHeader, orchestrator(services)),
	}}

	seen := map[string]bool{}
	for _, svc := range services {
		if seen[svc.Type] {
			g.logger.Debug().Str("type", svc.Type).Msg("duplicate service type, keeping first standalone config")
			continue
		}
		seen[svc.Type] = true
		files = append(files, File{
			Name:    ServiceFile(svc.Type),
			Content: g.render("cloudbuild/"+svc.Type, standaloneHeader(svc), standalone(svc)),
		})
	}
	return files, nil
}

const orchestratorHeader = `Build and deploy pipeline for all services. Triggers supply
_GCP_PROJECT, _REGION, _SERVICE_ACCOUNT, _ENVIRONMENT and _ARTIFACT_REPO.`

func standaloneHeader(svc Service) string {
	return fmt.Sprintf("Standalone build and deploy of the %s service (%s).", svc.Type, svc.Name)
}

func (g *Generator) render(identifier, header string, build Build) string {
	var buf bytes.Buffer
	buf.WriteString(markerPrefix + identifier + "\n")
	for _, line := range strings.Split(header, "\n") {
		buf.WriteString("# " + line + "\n")
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(build); err != nil {
		// The schema structs marshal unconditionally; this cannot fire.
		g.logger.Error().Err(err).Str("file", identifier).Msg("yaml encoding failed")
	}
	enc.Close()
	return buf.String()
}

func orchestrator(services []Service) Build {
	var steps []Step
	for _, svc := range services {
		steps = append(steps, serviceSteps(svc, true)...)
	}
	return Build{
		Steps:   steps,
		Timeout: buildTimeout,
		Options: &Options{Logging: loggingMode},
	}
}

func standalone(svc Service) Build {
	return Build{
		Steps:   serviceSteps(svc, false),
		Timeout: buildTimeout,
		Options: &Options{Logging: loggingMode},
	}
}

// serviceSteps renders the build → push → deploy chain for one service.
// In the orchestrator the build step starts immediately so services run
// in parallel; within a service the chain stays ordered through waitFor.
func serviceSteps(svc Service, parallel bool) []Step {
	image := "${_ARTIFACT_REPO}/" + svc.Name
	context := path.Dir(svc.Dockerfile)

	build := Step{
		ID:   "build-" + svc.Name,
		Name: dockerBuilder,
		Args: []string{
			"build",
			"-t", image + ":${SHORT_SHA}",
			"-t", image + ":latest",
			"-f", svc.Dockerfile,
			context,
		},
	}
	if parallel {
		build.WaitFor = []string{"-"}
	}
	push := Step{
		ID:      "push-" + svc.Name,
		Name:    dockerBuilder,
		Args:    []string{"push", "--all-tags", image},
		WaitFor: []string{build.ID},
	}
	deploy := Step{
		ID:         "deploy-" + svc.Name,
		Name:       deployBuilder,
		Entrypoint: "bash",
		Args:       []string{"-c", deployScript(svc.Name)},
		WaitFor:    []string{push.ID},
	}
	return []Step{build, push, deploy}
}

// deployScript derives the per-environment Cloud Run service name at build
// time: prod keeps the bare name, every other environment gets a suffix.
// Shell variables are $$-escaped so Cloud Build leaves them alone.
func deployScript(name string) string {
	return fmt.Sprintf(`service=%q
if [ "${_ENVIRONMENT}" != "prod" ]; then
  service="%s-${_ENVIRONMENT}"
fi
gcloud run deploy "$$service" \
  --project="${_GCP_PROJECT}" \
  --region="${_REGION}" \
  --image="${_ARTIFACT_REPO}/%s:${SHORT_SHA}" \
  --service-account="${_SERVICE_ACCOUNT}" \
  --quiet
`, name, name, name)
}

// WriteFiles writes rendered files under root. A file that already holds
// identical content is skipped; a file without the generation marker is
// treated as hand-written and preserved. Returns the paths written.
func (g *Generator) WriteFiles(root string, files []File) ([]string, error) {
	var written []string
	for _, file := range files {
		target := filepath.Join(root, filepath.FromSlash(file.Name))
		current, err := os.ReadFile(target)
		switch {
		case err == nil && string(current) == file.Content:
			continue
		case err == nil && !strings.HasPrefix(string(current), markerPrefix):
			g.logger.Warn().Str("file", file.Name).Msg("existing file is hand-written, leaving it untouched")
			continue
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return written, fmt.Errorf("read %s: %w", target, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(file.Content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		written = append(written, file.Name)
	}
	sort.Strings(written)
	return written, nil
}
