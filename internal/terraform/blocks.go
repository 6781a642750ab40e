// internal/terraform/blocks.go
package terraform

import (
	"fmt"
	"strings"

	"github.com/terraseed/terraseed/internal/models"
	"github.com/terraseed/terraseed/internal/naming"
)

// Workspace holds the metadata every artifact is rendered against.
type Workspace struct {
	Client    string
	Project   string
	ProjectID string
	Region    string
}

// NewWorkspace derives slugs and the default project ID from display names.
func NewWorkspace(client, project, projectID, region string) Workspace {
	ws := Workspace{Client: client, Project: project, ProjectID: projectID, Region: region}
	if ws.ProjectID == "" {
		ws.ProjectID = fmt.Sprintf("%s-%s-prod", ws.ClientSlug(), ws.ProjectSlug())
	}
	return ws
}

func (w Workspace) ClientSlug() string  { return naming.Slug(w.Client) }
func (w Workspace) ProjectSlug() string { return naming.Slug(w.Project) }

// runtimeIdentityName is the account the generated compute services and the
// migration job run as. It is synthesized whenever the selection contains a
// compute service, independent of any adopted accounts.
const runtimeIdentityName = "app-runtime"

func runtimeIdentityID() string {
	return naming.Sanitize(runtimeIdentityName, models.KindIdentity)
}

const migrationJobName = "db-migrate"

func migrationJobID() string {
	return naming.Sanitize(migrationJobName, models.KindComputeService)
}

// renderBackend produces the remote state configuration. Written once,
// never appended to.
func renderBackend(ws Workspace) string {
	return fmt.Sprintf(`terraform {
  backend "gcs" {
    bucket = %q
    prefix = %q
  }

  required_version = ">= 1.5.0"

  required_providers {
    google = {
      source  = "hashicorp/google"
      version = "~> 5.0"
    }
  }
}
`, naming.StateBucketName(ws.ClientSlug()), naming.StatePrefix(ws.ProjectSlug()))
}

func renderVariables(ws Workspace) string {
	return fmt.Sprintf(`variable "project_id" {
  description = "GCP Project ID"
  type        = string
  default     = %q
}

variable "region" {
  description = "Default GCP region"
  type        = string
  default     = %q
}

variable "client_name" {
  description = "Client name"
  type        = string
  default     = %q
}

variable "project_name" {
  description = "Project name"
  type        = string
  default     = %q
}

variable "environment" {
  description = "Environment"
  type        = string
  default     = "prod"
}

variable "labels" {
  description = "Standard labels"
  type        = map(string)
  default = {
    client      = %q
    project     = %q
    environment = "prod"
    managed_by  = "terraform"
    cost_center = "client-billable"
  }
}
`, ws.ProjectID, ws.Region, ws.Client, ws.Project, ws.ClientSlug(), ws.ProjectSlug())
}

func renderProvider(ws Workspace) string {
	return fmt.Sprintf(`# %s / %s
# Generated by terraseed

provider "google" {
  project = var.project_id
  region  = var.region
}

locals {
  labels = var.labels
}
`, ws.Client, ws.Project)
}

// renderComputeService emits one service block. connectorID, when set, is
// the network connector the service attaches to for private egress.
func renderComputeService(ws Workspace, d models.ResourceDescriptor, connectorID string) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	region := d.Region
	if region == "" {
		region = ws.Region
	}
	serviceType := d.Attr("type", "backend")

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", marker(id))
	fmt.Fprintf(&b, "# Cloud Run: %s (%s)\n", d.Name, serviceType)
	b.WriteString("# Infrastructure only; the CI/CD pipeline deploys the application image.\n")
	fmt.Fprintf(&b, "module %q {\n", id)
	b.WriteString("  source = \"../.terraform-modules/cloud-run-app\"\n\n")
	fmt.Fprintf(&b, "  project_id      = var.project_id\n")
	fmt.Fprintf(&b, "  service_name    = %q\n", d.Name)
	fmt.Fprintf(&b, "  region          = %q\n", region)
	fmt.Fprintf(&b, "  service_account = google_service_account.%s.email\n", runtimeIdentityID())
	if connectorID != "" {
		fmt.Fprintf(&b, "  vpc_connector   = google_vpc_access_connector.%s.id\n", connectorID)
	}
	b.WriteString("\n  labels = local.labels\n}\n")
	return id, b.String()
}

func renderRuntimeIdentity() (string, string) {
	id := runtimeIdentityID()
	return id, fmt.Sprintf(`%s
# Service account the generated workloads run as
resource "google_service_account" %q {
  account_id   = %q
  display_name = "Application runtime"
  project      = var.project_id
}
`, marker(id), id, runtimeIdentityName)
}

func renderIdentity(d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	accountID := d.Name
	if i := strings.Index(accountID, "@"); i >= 0 {
		accountID = accountID[:i]
	}
	display := d.Attr("display_name", accountID)
	return id, fmt.Sprintf(`%s
# Service account: %s
resource "google_service_account" %q {
  account_id   = %q
  display_name = %q
  project      = var.project_id
}
`, marker(id), accountID, id, accountID, display)
}

func renderNetworkBridge(ws Workspace, d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	region := d.Region
	if region == "" {
		region = ws.Region
	}
	return id, fmt.Sprintf(`%s
# VPC access connector: %s
resource "google_vpc_access_connector" %q {
  name          = %q
  project       = var.project_id
  region        = %q
  network       = %q
  ip_cidr_range = %q
}
`, marker(id), d.Name, id, d.Name, region,
		d.Attr("network", "default"), d.Attr("ip_cidr_range", "10.8.0.0/28"))
}

func renderManagedDatastore(d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	version := d.Attr("database_version", "POSTGRES_15")
	tier := d.Attr("tier", "db-g1-small")
	backups := d.Attr("backups", "true")
	return id, fmt.Sprintf(`%s
# Cloud SQL: %s
module %q {
  source = "../.terraform-modules/database-cloudsql"

  project_id       = var.project_id
  instance_name    = %q
  database_version = %q
  tier             = %q
  region           = var.region

  enable_backups = %s

  labels = local.labels
}
`, marker(id), d.Name, id, d.Name, version, tier, backups)
}

func renderObjectStore(ws Workspace, d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	location := d.Attr("location", ws.Region)
	return id, fmt.Sprintf(`%s
# Storage: %s
module %q {
  source = "../.terraform-modules/storage-bucket"

  project_id  = var.project_id
  bucket_name = %q
  location    = %q

  labels = local.labels
}
`, marker(id), d.Name, id, d.Name, location)
}

func renderSecret(d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	return id, fmt.Sprintf(`%s
# Secret: %s
resource "google_secret_manager_secret" %q {
  secret_id = %q
  project   = var.project_id

  replication {
    auto {}
  }

  labels = local.labels
}
`, marker(id), d.Name, id, d.Name)
}

// renderMigrationJob emits the one-off job that runs schema migrations
// before deploys. It references the runtime identity and the first
// datastore, so it renders only after both exist.
func renderMigrationJob(datastoreID string) (string, string) {
	id := migrationJobID()
	return id, fmt.Sprintf(`%s
# One-off migration job, run by the pipeline before each deploy
resource "google_cloud_run_v2_job" %q {
  name     = %q
  project  = var.project_id
  location = var.region

  template {
    template {
      service_account = google_service_account.%s.email
      containers {
        image = "gcr.io/cloudrun/hello"
        env {
          name  = "DATABASE_INSTANCE"
          value = module.%s.connection_name
        }
      }
    }
  }
}
`, marker(id), id, migrationJobName, runtimeIdentityID(), datastoreID)
}

func renderComputeOutput(d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	return id, fmt.Sprintf(`%s
output "%s_url" {
  description = "URL for %s"
  value       = module.%s.service_url
}
`, marker(id), id, d.Name, id)
}

func renderDatastoreOutput(d models.ResourceDescriptor) (string, string) {
	id := naming.Sanitize(d.Name, d.Kind)
	return id, fmt.Sprintf(`%s
output "%s_connection" {
  description = "Connection name for %s"
  value       = module.%s.connection_name
  sensitive   = true
}
`, marker(id), id, d.Name, id)
}
