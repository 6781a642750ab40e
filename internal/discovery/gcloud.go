// Package discovery scans a GCP project for resources terraseed can adopt.
// Probes shell out to gcloud with JSON output so discovery rides on the
// operator's existing authentication; a failed probe degrades to an empty
// family instead of aborting the scan.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terraseed/terraseed/internal/models"
)

const (
	// probeTimeout bounds each family probe. A hung gcloud must not stall
	// the whole scan.
	probeTimeout = 10 * time.Second

	// projectListTimeout is longer: organizations with many projects take
	// a while to enumerate.
	projectListTimeout = 30 * time.Second
)

// Runner executes one gcloud invocation and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func gcloudRunner(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gcloud", args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("gcloud %s: %s", args[0], firstLine(exitErr.Stderr))
		}
		return nil, fmt.Errorf("gcloud %s: %w", args[0], err)
	}
	return out, nil
}

func firstLine(out []byte) string {
	line := strings.TrimSpace(string(out))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line
}

// Scanner probes one project.
type Scanner struct {
	project string
	region  string
	run     Runner
	timeout time.Duration
	logger  zerolog.Logger
}

// Option adjusts scanner construction.
type Option func(*Scanner)

// WithRunner substitutes the gcloud runner. Tests use this.
func WithRunner(run Runner) Option {
	return func(s *Scanner) {
		s.run = run
	}
}

// WithRegion scopes the probes that need a region (VPC connectors).
func WithRegion(region string) Option {
	return func(s *Scanner) {
		s.region = region
	}
}

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithLogger substitutes the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner builds a scanner for the project.
func NewScanner(project string, opts ...Option) *Scanner {
	s := &Scanner{
		project: project,
		run:     gcloudRunner,
		timeout: probeTimeout,
		logger:  log.With().Str("component", "discovery").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunService is a discovered Cloud Run service.
type RunService struct {
	Name   string
	Region string
	URL    string
	Image  string
}

// SQLInstance is a discovered Cloud SQL instance.
type SQLInstance struct {
	Name    string
	Version string
	Tier    string
	Region  string
	State   string
}

// Bucket is a discovered storage bucket.
type Bucket struct {
	Name         string
	Location     string
	StorageClass string
}

// Secret is a discovered Secret Manager secret.
type Secret struct {
	Name string
}

// ServiceAccount is a discovered user-managed service account.
type ServiceAccount struct {
	Email       string
	DisplayName string
	Disabled    bool
}

// Connector is a discovered VPC access connector.
type Connector struct {
	Name      string
	FullName  string
	Network   string
	CIDRRange string
	State     string
}

// Inventory is everything one scan found, grouped by family.
type Inventory struct {
	Project    string
	Services   []RunService
	Databases  []SQLInstance
	Buckets    []Bucket
	Secrets    []Secret
	Accounts   []ServiceAccount
	Connectors []Connector
	APIs       []string
}

// Total counts the adoptable resources. Enabled APIs are informational and
// not included.
func (inv *Inventory) Total() int {
	return len(inv.Services) + len(inv.Databases) + len(inv.Buckets) +
		len(inv.Secrets) + len(inv.Accounts) + len(inv.Connectors)
}

// Descriptors returns every adoptable resource in presentation order:
// services, databases, buckets, secrets, accounts, connectors.
func (inv *Inventory) Descriptors() []models.ResourceDescriptor {
	out := make([]models.ResourceDescriptor, 0, inv.Total())
	for _, s := range inv.Services {
		out = append(out, s.Descriptor())
	}
	for _, d := range inv.Databases {
		out = append(out, d.Descriptor())
	}
	for _, b := range inv.Buckets {
		out = append(out, b.Descriptor())
	}
	for _, s := range inv.Secrets {
		out = append(out, s.Descriptor())
	}
	for _, a := range inv.Accounts {
		out = append(out, a.Descriptor())
	}
	for _, c := range inv.Connectors {
		out = append(out, c.Descriptor())
	}
	return out
}

// DiscoverAll runs every family probe. Probes that fail leave their family
// empty; the scan itself never fails.
func (s *Scanner) DiscoverAll(ctx context.Context) *Inventory {
	s.logger.Info().Str("project", s.project).Msg("scanning project")
	inv := &Inventory{Project: s.project}
	inv.Services = s.discoverRunServices(ctx)
	inv.Databases = s.discoverSQLInstances(ctx)
	inv.Buckets = s.discoverBuckets(ctx)
	inv.Secrets = s.discoverSecrets(ctx)
	inv.Accounts = s.discoverServiceAccounts(ctx)
	inv.Connectors = s.discoverConnectors(ctx)
	inv.APIs = s.discoverEnabledAPIs(ctx)
	s.logger.Info().Int("resources", inv.Total()).Msg("scan complete")
	return inv
}

// listJSON runs one probe with its own timeout and decodes the JSON array
// output. Returns false when the family should be treated as empty.
func (s *Scanner) listJSON(ctx context.Context, family string, dest any, args ...string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.run(ctx, args...)
	if err != nil {
		// Common and benign: API not enabled, or role missing for one
		// family. The operator still gets everything else.
		s.logger.Debug().Str("family", family).Err(err).Msg("probe failed, treating family as empty")
		return false
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return false
	}
	if err := json.Unmarshal(out, dest); err != nil {
		derr := &models.DiscoveryError{Family: family, Project: s.project, Cause: err}
		s.logger.Warn().Err(derr).Msg("could not parse probe output")
		return false
	}
	return true
}

type runServiceDoc struct {
	Metadata struct {
		Name   string            `json:"name"`
		Labels map[string]string `json:"labels"`
	} `json:"metadata"`
	Status struct {
		URL string `json:"url"`
	} `json:"status"`
	Spec struct {
		Template struct {
			Spec struct {
				Containers []struct {
					Image string `json:"image"`
				} `json:"containers"`
			} `json:"spec"`
		} `json:"template"`
	} `json:"spec"`
}

func (s *Scanner) discoverRunServices(ctx context.Context) []RunService {
	var docs []runServiceDoc
	if !s.listJSON(ctx, "run-services", &docs,
		"run", "services", "list", "--project="+s.project, "--format=json", "--verbosity=error") {
		return nil
	}
	services := make([]RunService, 0, len(docs))
	for _, doc := range docs {
		svc := RunService{
			Name:   doc.Metadata.Name,
			Region: doc.Metadata.Labels["cloud.googleapis.com/location"],
			URL:    doc.Status.URL,
		}
		if containers := doc.Spec.Template.Spec.Containers; len(containers) > 0 {
			svc.Image = containers[0].Image
		}
		services = append(services, svc)
	}
	return services
}

type sqlInstanceDoc struct {
	Name            string `json:"name"`
	DatabaseVersion string `json:"databaseVersion"`
	Region          string `json:"region"`
	State           string `json:"state"`
	Settings        struct {
		Tier string `json:"tier"`
	} `json:"settings"`
}

func (s *Scanner) discoverSQLInstances(ctx context.Context) []SQLInstance {
	var docs []sqlInstanceDoc
	if !s.listJSON(ctx, "sql-instances", &docs,
		"sql", "instances", "list", "--project="+s.project, "--format=json", "--verbosity=error") {
		return nil
	}
	instances := make([]SQLInstance, 0, len(docs))
	for _, doc := range docs {
		instances = append(instances, SQLInstance{
			Name:    doc.Name,
			Version: doc.DatabaseVersion,
			Tier:    doc.Settings.Tier,
			Region:  doc.Region,
			State:   doc.State,
		})
	}
	return instances
}

type bucketDoc struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	StorageClass string `json:"storageClass"`
}

func (s *Scanner) discoverBuckets(ctx context.Context) []Bucket {
	var docs []bucketDoc
	if !s.listJSON(ctx, "buckets", &docs,
		"storage", "buckets", "list", "--project="+s.project, "--format=json", "--verbosity=error") {
		return nil
	}
	buckets := make([]Bucket, 0, len(docs))
	for _, doc := range docs {
		buckets = append(buckets, Bucket{
			Name:         doc.Name,
			Location:     doc.Location,
			StorageClass: doc.StorageClass,
		})
	}
	return buckets
}

type secretDoc struct {
	Name string `json:"name"`
}

func (s *Scanner) discoverSecrets(ctx context.Context) []Secret {
	var docs []secretDoc
	if !s.listJSON(ctx, "secrets", &docs,
		"secrets", "list", "--project="+s.project, "--format=json", "--verbosity=error") {
		return nil
	}
	secrets := make([]Secret, 0, len(docs))
	for _, doc := range docs {
		// The API reports full paths: projects/<number>/secrets/<name>.
		name := doc.Name
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		secrets = append(secrets, Secret{Name: name})
	}
	return secrets
}

type serviceAccountDoc struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Disabled    bool   `json:"disabled"`
}

func (s *Scanner) discoverServiceAccounts(ctx context.Context) []ServiceAccount {
	var docs []serviceAccountDoc
	if !s.listJSON(ctx, "service-accounts", &docs,
		"iam", "service-accounts", "list", "--project="+s.project, "--format=json", "--verbosity=error") {
		return nil
	}
	accounts := make([]ServiceAccount, 0, len(docs))
	for _, doc := range docs {
		if isServiceAgent(doc.Email) {
			continue
		}
		accounts = append(accounts, ServiceAccount{
			Email:       doc.Email,
			DisplayName: doc.DisplayName,
			Disabled:    doc.Disabled,
		})
	}
	return accounts
}

// isServiceAgent filters the Google-managed agents that show up in every
// project and are never adopted into a workspace.
func isServiceAgent(email string) bool {
	if strings.Contains(email, "@gcp-sa-") {
		return true
	}
	for _, suffix := range []string{
		"@cloudservices.gserviceaccount.com",
		"@compute-system.iam.gserviceaccount.com",
		"@appspot.gserviceaccount.com",
	} {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

type connectorDoc struct {
	Name        string `json:"name"`
	Network     string `json:"network"`
	IPCidrRange string `json:"ipCidrRange"`
	State       string `json:"state"`
}

func (s *Scanner) discoverConnectors(ctx context.Context) []Connector {
	args := []string{"compute", "networks", "vpc-access", "connectors", "list",
		"--project=" + s.project, "--format=json", "--verbosity=error"}
	if s.region != "" {
		args = append(args, "--region="+s.region)
	}
	var docs []connectorDoc
	if !s.listJSON(ctx, "vpc-connectors", &docs, args...) {
		return nil
	}
	connectors := make([]Connector, 0, len(docs))
	for _, doc := range docs {
		name := doc.Name
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		connectors = append(connectors, Connector{
			Name:      name,
			FullName:  doc.Name,
			Network:   doc.Network,
			CIDRRange: doc.IPCidrRange,
			State:     doc.State,
		})
	}
	return connectors
}

type enabledServiceDoc struct {
	Config struct {
		Name string `json:"name"`
	} `json:"config"`
}

// interestingAPIs are the services whose enablement changes what the rest
// of onboarding can do.
var interestingAPIs = map[string]bool{
	"run.googleapis.com":              true,
	"sqladmin.googleapis.com":         true,
	"secretmanager.googleapis.com":    true,
	"vpcaccess.googleapis.com":        true,
	"cloudbuild.googleapis.com":       true,
	"artifactregistry.googleapis.com": true,
	"compute.googleapis.com":          true,
}

func (s *Scanner) discoverEnabledAPIs(ctx context.Context) []string {
	var docs []enabledServiceDoc
	if !s.listJSON(ctx, "enabled-apis", &docs,
		"services", "list", "--enabled", "--project="+s.project, "--format=json", "--verbosity=error") {
		return nil
	}
	var apis []string
	for _, doc := range docs {
		if interestingAPIs[doc.Config.Name] {
			apis = append(apis, doc.Config.Name)
		}
	}
	return apis
}

// Descriptor maps the service onto the generic resource model, defaulting
// to adoption since the resource already exists.
func (s RunService) Descriptor() models.ResourceDescriptor {
	attrs := map[string]string{"type": serviceType(s)}
	if s.Image != "" {
		attrs["image"] = s.Image
	}
	if s.URL != "" {
		attrs["url"] = s.URL
	}
	return models.ResourceDescriptor{
		Kind:       models.KindComputeService,
		Name:       s.Name,
		Region:     s.Region,
		Mode:       models.ModeAdoptExisting,
		Attributes: attrs,
	}
}

// serviceType guesses the workload role from its name and image. Wrong
// guesses only change a generated default the operator can edit.
func serviceType(s RunService) string {
	needle := strings.ToLower(s.Name + " " + s.Image)
	for _, hint := range []string{"frontend", "web", "ui"} {
		if strings.Contains(needle, hint) {
			return "frontend"
		}
	}
	return "backend"
}

// Descriptor maps the instance onto the generic resource model.
func (d SQLInstance) Descriptor() models.ResourceDescriptor {
	attrs := map[string]string{}
	if d.Version != "" {
		attrs["database_version"] = d.Version
	}
	if d.Tier != "" {
		attrs["tier"] = d.Tier
	}
	return models.ResourceDescriptor{
		Kind:       models.KindManagedDatastore,
		Name:       d.Name,
		Region:     d.Region,
		Mode:       models.ModeAdoptExisting,
		Attributes: attrs,
	}
}

// Descriptor maps the bucket onto the generic resource model.
func (b Bucket) Descriptor() models.ResourceDescriptor {
	attrs := map[string]string{}
	if b.Location != "" {
		attrs["location"] = b.Location
	}
	if b.StorageClass != "" {
		attrs["storage_class"] = b.StorageClass
	}
	return models.ResourceDescriptor{
		Kind:       models.KindObjectStore,
		Name:       b.Name,
		Mode:       models.ModeAdoptExisting,
		Attributes: attrs,
	}
}

// Descriptor maps the secret onto the generic resource model.
func (s Secret) Descriptor() models.ResourceDescriptor {
	return models.ResourceDescriptor{
		Kind: models.KindSecret,
		Name: s.Name,
		Mode: models.ModeAdoptExisting,
	}
}

// Descriptor maps the account onto the generic resource model.
func (a ServiceAccount) Descriptor() models.ResourceDescriptor {
	attrs := map[string]string{}
	if a.DisplayName != "" {
		attrs["display_name"] = a.DisplayName
	}
	return models.ResourceDescriptor{
		Kind:       models.KindIdentity,
		Name:       a.Email,
		Mode:       models.ModeAdoptExisting,
		Attributes: attrs,
	}
}

// Descriptor maps the connector onto the generic resource model.
func (c Connector) Descriptor() models.ResourceDescriptor {
	attrs := map[string]string{}
	if c.Network != "" {
		attrs["network"] = c.Network
	}
	if c.CIDRRange != "" {
		attrs["ip_cidr_range"] = c.CIDRRange
	}
	return models.ResourceDescriptor{
		Kind:       models.KindNetworkBridge,
		Name:       c.Name,
		Mode:       models.ModeAdoptExisting,
		Attributes: attrs,
	}
}

// Project is an entry from the project listing.
type Project struct {
	ProjectID      string `json:"projectId"`
	Name           string `json:"name"`
	ProjectNumber  string `json:"projectNumber"`
	LifecycleState string `json:"lifecycleState"`
}

// ListProjects returns the active projects the caller can see. A nil
// runner uses gcloud.
func ListProjects(ctx context.Context, run Runner) ([]Project, error) {
	if run == nil {
		run = gcloudRunner
	}
	ctx, cancel := context.WithTimeout(ctx, projectListTimeout)
	defer cancel()
	out, err := run(ctx, "projects", "list", "--format=json")
	if err != nil {
		return nil, &models.DiscoveryError{Family: "projects", Cause: err}
	}
	var docs []Project
	if err := json.Unmarshal(out, &docs); err != nil {
		return nil, &models.DiscoveryError{Family: "projects", Cause: err}
	}
	active := docs[:0]
	for _, p := range docs {
		if p.LifecycleState == "" || p.LifecycleState == "ACTIVE" {
			active = append(active, p)
		}
	}
	return active, nil
}

// VerifyAccess confirms the caller can describe the project before a scan
// quietly reports everything as empty.
func (s *Scanner) VerifyAccess(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.run(ctx, "projects", "describe", s.project, "--format=json"); err != nil {
		return &models.DiscoveryError{Family: "project-access", Project: s.project, Cause: err}
	}
	return nil
}
