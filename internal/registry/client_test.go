package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/terraseed/terraseed/internal/models"
)

type staticTokens struct {
	token string
	calls int
}

func (s *staticTokens) IdentityToken(ctx context.Context, audience string) (string, error) {
	s.calls++
	return s.token, nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *staticTokens) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	tokens := &staticTokens{token: "test-token"}
	client := New(server.URL,
		WithHTTPClient(server.Client()),
		WithTokenSource(tokens),
		WithLogger(zerolog.Nop()),
	)
	return client, tokens
}

func TestRegisterClientCreates(t *testing.T) {
	var gotPath, gotAuth string
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var record ClientRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if record.ID != "acme" {
			t.Errorf("request carried client %q, want acme", record.ID)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(record)
	}))

	record, created, err := client.RegisterClient(context.Background(), ClientRecord{ID: "acme", Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("RegisterClient: %v", err)
	}
	if !created {
		t.Error("expected created=true for a fresh client")
	}
	if record.Name != "Acme Corp" {
		t.Errorf("record name = %q", record.Name)
	}
	if gotPath != "/api/v1/clients" {
		t.Errorf("request path = %q, want /api/v1/clients", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if tokens.calls != 1 {
		t.Errorf("token source called %d times, want 1", tokens.calls)
	}
}

func TestRegisterClientTreatsConflictAsRegistered(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "client already exists", http.StatusConflict)
	}))

	record, created, err := client.RegisterClient(context.Background(), ClientRecord{ID: "acme", Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("RegisterClient on conflict: %v", err)
	}
	if created {
		t.Error("expected created=false on conflict")
	}
	if record == nil || record.ID != "acme" {
		t.Errorf("conflict should echo the submitted record, got %+v", record)
	}
}

func TestRegisterProjectSurfacesServerErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))

	_, _, err := client.RegisterProject(context.Background(), ProjectRecord{ID: "acme-shop"})
	if err == nil {
		t.Fatal("expected an error for HTTP 500")
	}
	var regErr *models.RegistryError
	if !errors.As(err, &regErr) {
		t.Fatalf("error %T is not a RegistryError", err)
	}
	if regErr.Operation != "register-project" {
		t.Errorf("operation = %q", regErr.Operation)
	}
	if regErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", regErr.StatusCode)
	}
}

func TestGetProjectMissingIsNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	record, err := client.GetProject(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetProject on 404: %v", err)
	}
	if record != nil {
		t.Errorf("missing project should be nil, got %+v", record)
	}
}

func TestGetProjectReturnsRecord(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects/acme-shop" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ProjectRecord{
			ID:           "acme-shop",
			ClientID:     "acme",
			GCPProjectID: "acme-shop-prod",
			Environments: []EnvironmentRecord{{Name: "staging", AutoDeploy: true}},
		})
	}))

	record, err := client.GetProject(context.Background(), "acme-shop")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if record.GCPProjectID != "acme-shop-prod" {
		t.Errorf("gcp project = %q", record.GCPProjectID)
	}
	if len(record.Environments) != 1 || record.Environments[0].Name != "staging" {
		t.Errorf("environments = %+v", record.Environments)
	}
}

func TestListProjectsFiltersByClient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("client_id"); got != "acme" {
			t.Errorf("client_id = %q", got)
		}
		json.NewEncoder(w).Encode([]ProjectRecord{{ID: "acme-shop"}, {ID: "acme-blog"}})
	}))

	records, err := client.ListProjects(context.Background(), "acme")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d projects, want 2", len(records))
	}
}

func TestGetPlatformConfig(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/platform/config" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(PlatformConfig{
			PlatformProject:        "terraseed-platform-prod",
			GitHubConnection:       "github-main",
			GitHubConnectionRegion: "europe-north2",
			RegistryLocation:       "europe-north2",
			RegistryRepo:           "services",
		})
	}))

	cfg, err := client.GetPlatformConfig(context.Background())
	if err != nil {
		t.Fatalf("GetPlatformConfig: %v", err)
	}
	if cfg.GitHubConnection != "github-main" {
		t.Errorf("connection = %q", cfg.GitHubConnection)
	}
	want := "europe-north2-docker.pkg.dev/terraseed-platform-prod/services"
	if got := cfg.ArtifactRepo(); got != want {
		t.Errorf("artifact repo = %q, want %q", got, want)
	}
}
