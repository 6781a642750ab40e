package cicd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/terraseed/terraseed/internal/models"
)

func testServices() []Service {
	return []Service{
		{Name: "acme-shop-backend", Type: "backend", Dockerfile: "backend/Dockerfile"},
		{Name: "acme-shop-frontend", Type: "frontend", Dockerfile: "frontend/Dockerfile"},
	}
}

func newTestGenerator() *Generator {
	return NewGenerator(WithLogger(zerolog.Nop()))
}

func findFile(t *testing.T, files []File, name string) File {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no rendered file named %q", name)
	return File{}
}

func TestRenderAllProducesOrchestratorAndPerTypeFiles(t *testing.T) {
	files, err := newTestGenerator().RenderAll(testServices())
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want orchestrator plus two standalone configs", len(files))
	}

	orch := findFile(t, files, "cicd/cloudbuild.yaml")
	if !strings.HasPrefix(orch.Content, "# terraseed:id=cloudbuild/orchestrator\n") {
		t.Errorf("orchestrator misses its marker line:\n%s", orch.Content[:80])
	}

	var build Build
	if err := yaml.Unmarshal([]byte(orch.Content), &build); err != nil {
		t.Fatalf("orchestrator is not valid YAML: %v", err)
	}
	if len(build.Steps) != 6 {
		t.Fatalf("orchestrator has %d steps, want 6 (build/push/deploy per service)", len(build.Steps))
	}
	if build.Steps[0].ID != "build-acme-shop-backend" {
		t.Errorf("first step id = %q", build.Steps[0].ID)
	}
	if got := build.Steps[0].WaitFor; len(got) != 1 || got[0] != "-" {
		t.Errorf("orchestrator build steps should start immediately, waitFor = %v", got)
	}
	if got := build.Steps[2].WaitFor; len(got) != 1 || got[0] != "push-acme-shop-backend" {
		t.Errorf("deploy step waits on %v, want its push step", got)
	}
	if build.Options == nil || build.Options.Logging != "CLOUD_LOGGING_ONLY" {
		t.Errorf("builds running as the deploy account need CLOUD_LOGGING_ONLY, options = %+v", build.Options)
	}

	joined := strings.Join(build.Steps[0].Args, " ")
	if !strings.Contains(joined, "${_ARTIFACT_REPO}/acme-shop-backend:${SHORT_SHA}") {
		t.Errorf("build args miss the artifact repo tag: %s", joined)
	}
	if !strings.Contains(joined, "-f backend/Dockerfile backend") {
		t.Errorf("build args miss the dockerfile and context: %s", joined)
	}

	backend := findFile(t, files, "cicd/cloudbuild-backend.yaml")
	var single Build
	if err := yaml.Unmarshal([]byte(backend.Content), &single); err != nil {
		t.Fatalf("standalone config is not valid YAML: %v", err)
	}
	if len(single.Steps) != 3 {
		t.Errorf("standalone config has %d steps, want 3", len(single.Steps))
	}
	if len(single.Steps[0].WaitFor) != 0 {
		t.Errorf("standalone build step should not carry waitFor, got %v", single.Steps[0].WaitFor)
	}
	findFile(t, files, "cicd/cloudbuild-frontend.yaml")
}

func TestRenderAllIsDeterministic(t *testing.T) {
	g := newTestGenerator()
	first, err := g.RenderAll(testServices())
	if err != nil {
		t.Fatalf("first RenderAll: %v", err)
	}
	second, err := g.RenderAll(testServices())
	if err != nil {
		t.Fatalf("second RenderAll: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("file counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Content != second[i].Content {
			t.Errorf("file %s differs between renders", first[i].Name)
		}
	}
}

func TestRenderAllValidatesInput(t *testing.T) {
	g := newTestGenerator()

	if _, err := g.RenderAll(nil); err == nil {
		t.Error("expected an error for an empty service list")
	}

	_, err := g.RenderAll([]Service{{Name: "acme-shop-backend", Type: "backend"}})
	var composeErr *models.ComposeError
	if !errors.As(err, &composeErr) {
		t.Fatalf("error %T is not a ComposeError", err)
	}
	if composeErr.Identifier != "acme-shop-backend" {
		t.Errorf("identifier = %q", composeErr.Identifier)
	}
}

func TestDeployScriptDerivesEnvironmentName(t *testing.T) {
	script := deployScript("acme-shop-backend")
	for _, want := range []string{
		`service="acme-shop-backend"`,
		`if [ "${_ENVIRONMENT}" != "prod" ]`,
		`service="acme-shop-backend-${_ENVIRONMENT}"`,
		`gcloud run deploy "$$service"`,
		`--service-account="${_SERVICE_ACCOUNT}"`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("deploy script misses %q:\n%s", want, script)
		}
	}
}

func TestWriteFilesIsIdempotent(t *testing.T) {
	g := newTestGenerator()
	files, err := g.RenderAll(testServices())
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	root := t.TempDir()

	written, err := g.WriteFiles(root, files)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("first write produced %d files, want 3", len(written))
	}

	written, err = g.WriteFiles(root, files)
	if err != nil {
		t.Fatalf("second WriteFiles: %v", err)
	}
	if len(written) != 0 {
		t.Errorf("second write touched %v, want nothing", written)
	}
}

func TestWriteFilesPreservesHandWrittenFiles(t *testing.T) {
	g := newTestGenerator()
	files, err := g.RenderAll(testServices())
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	root := t.TempDir()
	target := filepath.Join(root, "cicd", "cloudbuild.yaml")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	custom := "steps:\n  - name: custom/builder\n"
	if err := os.WriteFile(target, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := g.WriteFiles(root, files)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	for _, name := range written {
		if name == "cicd/cloudbuild.yaml" {
			t.Error("hand-written orchestrator was overwritten")
		}
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != custom {
		t.Errorf("hand-written content changed:\n%s", got)
	}
}

func TestWriteFilesRefreshesStaleGeneratedFiles(t *testing.T) {
	g := newTestGenerator()
	files, err := g.RenderAll(testServices())
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	root := t.TempDir()
	target := filepath.Join(root, "cicd", "cloudbuild.yaml")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	stale := "# terraseed:id=cloudbuild/orchestrator\nsteps: []\n"
	if err := os.WriteFile(target, []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := g.WriteFiles(root, files)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	refreshed := false
	for _, name := range written {
		if name == "cicd/cloudbuild.yaml" {
			refreshed = true
		}
	}
	if !refreshed {
		t.Fatal("stale generated orchestrator was not refreshed")
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) == stale {
		t.Error("orchestrator content still stale")
	}
}
