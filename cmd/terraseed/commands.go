package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/terraseed/terraseed/internal/bootstrap"
	"github.com/terraseed/terraseed/internal/cicd"
	"github.com/terraseed/terraseed/internal/cloud"
	"github.com/terraseed/terraseed/internal/config"
	"github.com/terraseed/terraseed/internal/discovery"
	"github.com/terraseed/terraseed/internal/gitinfo"
	"github.com/terraseed/terraseed/internal/models"
	"github.com/terraseed/terraseed/internal/naming"
	"github.com/terraseed/terraseed/internal/prompts"
	"github.com/terraseed/terraseed/internal/registry"
	"github.com/terraseed/terraseed/internal/state"
	"github.com/terraseed/terraseed/internal/terraform"
	"github.com/terraseed/terraseed/internal/triggers"
)

// importCommand runs the full onboarding pipeline: discover, select,
// generate, bootstrap, register, triggers. Cloud-facing steps report
// failures and keep going where possible; the pipeline only aborts on
// configuration problems or when nothing useful can happen next.
func importCommand(c *cli.Context) error {
	ctx := c.Context
	runID := uuid.NewString()[:8]
	logger := log.With().Str("run", runID).Logger()

	cfg := config.Load()
	if region := c.String("region"); region != "" {
		cfg.Region = region
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root := c.String("dir")
	assumeYes := c.Bool("yes")

	git := gitinfo.Detect(ctx)

	projectID, err := resolveProjectID(ctx, c.String("project"), assumeYes)
	if err != nil {
		return err
	}

	scanner := discovery.NewScanner(projectID,
		discovery.WithRegion(cfg.Region),
		discovery.WithLogger(logger),
	)
	if err := scanner.VerifyAccess(ctx); err != nil {
		return err
	}

	spin := models.NewLoader(os.Stdout, fmt.Sprintf("Scanning %s for manageable resources...", projectID))
	spin.Start()
	inv := scanner.DiscoverAll(ctx)
	spin.StopWithMessage(fmt.Sprintf("🔍 Scanned %s", projectID))
	terraform.DisplayInventory(inv)
	if inv.Total() == 0 {
		fmt.Println("Nothing to import. Use 'terraseed init' to scaffold a fresh project.")
		return nil
	}

	selection, err := buildSelection(inv, assumeYes)
	if err != nil {
		return err
	}
	if selection.Len() == 0 {
		fmt.Println("Nothing selected, stopping here.")
		return nil
	}
	terraform.DisplaySelection(selection)

	client, name := resolveNames(c, projectID, assumeYes)
	if client == "" {
		return fmt.Errorf("--client is required with --yes")
	}

	ws := terraform.NewWorkspace(client, name, projectID, cfg.Region)

	// Terraform generation is local and append-only, safe to run before
	// any cloud mutation.
	tfDir := filepath.Join(root, "terraform")
	existing, err := terraform.LoadArtifactSet(tfDir)
	if err != nil {
		return err
	}
	composed, err := terraform.NewComposer(ws).Compose(selection, existing)
	if err != nil {
		return err
	}
	written, err := terraform.WriteArtifactSet(tfDir, composed)
	if err != nil {
		return err
	}
	terraform.DisplayComposeResult(tfDir, written)

	if !assumeYes && !prompts.ConfirmAction("Bootstrap project trust (state bucket, deploy identity, network access)?", true) {
		terraform.DisplayNextSteps(tfDir)
		return nil
	}

	services, err := cloud.Connect(ctx, logger)
	if err != nil {
		return err
	}

	platform := bootstrap.Platform{Project: cfg.PlatformProject, Number: cfg.PlatformNumber}
	boot := models.NewLoader(os.Stdout, "Bootstrapping project trust...")
	boot.Start()
	trust := bootstrap.New(services.State, services.Identity, platform, bootstrap.WithLogger(logger)).
		Run(ctx, bootstrap.Request{
			ProjectID:   projectID,
			StateBucket: naming.StateBucketName(ws.ClientSlug()),
			Region:      cfg.Region,
		})
	boot.Stop()
	terraform.DisplayBootstrap(trust)

	record := &state.Record{
		Client:         client,
		Project:        name,
		GCPProjectID:   projectID,
		Region:         cfg.Region,
		StateBucket:    naming.StateBucketName(ws.ClientSlug()),
		DeployIdentity: bootstrap.DeployEmail(projectID),
		Bootstrap:      &trust,
	}

	// CI/CD and registration only make sense with deployable services.
	pipeline, err := pipelineServices(selection, ws.ProjectSlug(), assumeYes)
	if err != nil {
		return err
	}
	if len(pipeline) == 0 {
		fmt.Println("No deployable services, skipping CI/CD setup.")
		saveRecord(root, record)
		terraform.DisplayNextSteps(tfDir)
		return nil
	}

	envs, err := chooseEnvironments(assumeYes)
	if err != nil {
		return err
	}

	repoURL := resolveRepoURL(c, git, ws, assumeYes)

	gen := cicd.NewGenerator(cicd.WithLogger(logger))
	files, err := gen.RenderAll(pipeline)
	if err != nil {
		return err
	}
	cicdWritten, err := gen.WriteFiles(root, files)
	if err != nil {
		return err
	}
	if len(cicdWritten) > 0 {
		fmt.Printf("✅ Build configs written to %s/\n", filepath.Join(root, "cicd"))
	} else {
		fmt.Println("✅ Build configs already up to date")
	}

	reg := registry.New(cfg.RegistryURL, registry.WithLogger(logger))
	record.Registered = registerProject(ctx, reg, ws, cfg, repoURL, pipeline, envs, selection)

	platformCfg := loadPlatformConfig(ctx, reg, cfg)

	if trust.DeployIdentity.Result.Ready() {
		prov := triggers.New(services.Builds, services.Identity, triggers.WithLogger(logger))
		result, err := prov.Provision(ctx, triggers.Request{
			ProjectSlug:      ws.ClientSlug() + "-" + ws.ProjectSlug(),
			ClientProject:    projectID,
			DeployAccount:    bootstrap.DeployEmail(projectID),
			Region:           cfg.Region,
			PlatformProject:  cfg.PlatformProject,
			Connection:       platformCfg.GitHubConnection,
			ConnectionRegion: platformCfg.GitHubConnectionRegion,
			RepoURL:          repoURL,
			ArtifactRepo:     platformCfg.ArtifactRepo(),
			Environments:     envs,
			Diagnose:         c.Bool("diagnose"),
		})
		if err != nil {
			terraform.DisplayRunError("trigger provisioning", err)
		} else {
			terraform.DisplayTriggers(result)
			record.Triggers = result
		}
	} else {
		fmt.Println("⚠️  Deploy identity not ready, skipping trigger creation. Re-run after fixing bootstrap.")
	}

	saveRecord(root, record)
	terraform.DisplayNextSteps(tfDir)
	return nil
}

// resolveProjectID returns the flag value or walks the operator through
// project selection.
func resolveProjectID(ctx context.Context, flag string, assumeYes bool) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if assumeYes {
		return "", fmt.Errorf("--project is required with --yes")
	}
	projects, err := discovery.ListProjects(ctx, nil)
	if err != nil {
		return "", err
	}
	return prompts.SelectProject(projects, "")
}

// buildSelection takes everything in --yes mode, otherwise prompts per
// resource family.
func buildSelection(inv *discovery.Inventory, assumeYes bool) (*models.ResourceSelection, error) {
	if assumeYes {
		return models.NewResourceSelection(inv.Descriptors()...)
	}
	return prompts.SelectResources(inv)
}

// resolveNames derives client and project names from flags, prompts, or
// the project ID naming convention (<client>-<project>-prod).
func resolveNames(c *cli.Context, projectID string, assumeYes bool) (client, name string) {
	defClient, defName := splitProjectID(projectID)
	client = c.String("client")
	name = c.String("name")
	if client == "" && !assumeYes {
		client = prompts.TextInput("Client name:", defClient)
	}
	if name == "" {
		if assumeYes {
			name = defName
		} else {
			name = prompts.TextInput("Project name:", defName)
		}
	}
	return client, name
}

// splitProjectID guesses client and project names from an ID like
// acme-shop-prod.
func splitProjectID(projectID string) (client, name string) {
	id := strings.TrimSuffix(projectID, "-prod")
	client, name, found := strings.Cut(id, "-")
	if !found {
		return id, id
	}
	return client, name
}

// pipelineServices derives the deployable services: from the selected
// compute services when the project has any, otherwise by asking.
func pipelineServices(selection *models.ResourceSelection, slug string, assumeYes bool) ([]cicd.Service, error) {
	compute := selection.ByKind(models.KindComputeService)
	if len(compute) == 0 {
		if assumeYes {
			return nil, nil
		}
		if !prompts.ConfirmAction("No Cloud Run services selected. Define services for CI/CD anyway?", false) {
			return nil, nil
		}
		return prompts.PromptServices(slug)
	}

	var out []cicd.Service
	for _, d := range compute {
		serviceType := d.Attr("type", "backend")
		dockerfile := serviceType + "/Dockerfile"
		if !assumeYes {
			dockerfile = prompts.TextInput(
				fmt.Sprintf("Dockerfile path for %s:", d.Name),
				dockerfile,
			)
		}
		out = append(out, cicd.Service{Name: d.Name, Type: serviceType, Dockerfile: dockerfile})
	}
	return out, nil
}

func chooseEnvironments(assumeYes bool) ([]models.TriggerEnvironment, error) {
	if assumeYes {
		return []models.TriggerEnvironment{
			{Name: "staging", BranchPattern: "^main$"},
			{Name: "prod", TagPattern: "^v.*$", RequireApproval: true},
		}, nil
	}
	return prompts.SelectEnvironments()
}

// resolveRepoURL prefers the flag, then the detected git remote, then the
// naming convention.
func resolveRepoURL(c *cli.Context, git *gitinfo.Info, ws terraform.Workspace, assumeYes bool) string {
	repoURL := c.String("repo")
	if repoURL == "" && git != nil && git.Remote != "" {
		repoURL = git.Remote
	}
	if repoURL == "" {
		repoURL = fmt.Sprintf("https://github.com/terraseed/%s-%s", ws.ClientSlug(), ws.ProjectSlug())
	}
	if !assumeYes {
		repoURL = prompts.PromptRepoURL(repoURL)
	}
	return repoURL
}

// registerProject pushes the client and project records to the platform
// registry. Registration failures are reported but never abort onboarding.
func registerProject(
	ctx context.Context,
	reg *registry.Client,
	ws terraform.Workspace,
	cfg *config.Config,
	repoURL string,
	pipeline []cicd.Service,
	envs []models.TriggerEnvironment,
	selection *models.ResourceSelection,
) bool {
	clientSlug := ws.ClientSlug()
	projectSlug := ws.ProjectSlug()

	fmt.Println("📡 Registering project in the platform registry...")

	if _, _, err := reg.RegisterClient(ctx, registry.ClientRecord{
		ID:        clientSlug,
		Name:      ws.Client,
		Subdomain: clientSlug,
	}); err != nil {
		fmt.Printf("⚠️  Could not register client: %v\n", err)
		return false
	}

	databaseBase := ""
	if datastores := selection.ByKind(models.KindManagedDatastore); len(datastores) > 0 {
		databaseBase = datastores[0].Name
	}

	var envRecords []registry.EnvironmentRecord
	for _, env := range envs {
		envRecords = append(envRecords, registry.EnvironmentRecord{
			Name:             env.Name,
			DatabaseInstance: environmentDatabase(databaseBase, env.Name),
			AutoDeploy:       env.BranchPattern != "",
			RequiresApproval: env.RequireApproval,
		})
	}

	var svcRecords []registry.ServiceRecord
	for _, svc := range pipeline {
		for _, env := range envs {
			svcName := svc.Name
			if env.Name != "prod" {
				svcName += "-" + env.Name
			}
			svcRecords = append(svcRecords, registry.ServiceRecord{
				Name:            svcName,
				Type:            svc.Type,
				Environment:     env.Name,
				CloudRunService: svcName,
				CloudRunRegion:  ws.Region,
				DockerfilePath:  svc.Dockerfile,
				CloudBuildFile:  cicd.ServiceFile(svc.Type),
			})
		}
	}

	_, created, err := reg.RegisterProject(ctx, registry.ProjectRecord{
		ID:                   clientSlug + "-" + projectSlug,
		ClientID:             clientSlug,
		Name:                 ws.Project,
		Subdomain:            projectSlug,
		FullDomain:           fmt.Sprintf("%s.%s.%s", projectSlug, clientSlug, cfg.Domain),
		GCPProjectID:         ws.ProjectID,
		GitHubRepo:           repoURL,
		TerraformStateBucket: naming.StateBucketName(clientSlug),
		TerraformStatePrefix: naming.StatePrefix(projectSlug),
		ProjectType:          projectType(pipeline),
		Environments:         envRecords,
		Services:             svcRecords,
	})
	if err != nil {
		fmt.Printf("⚠️  Could not register project: %v\n", err)
		return false
	}
	if created {
		fmt.Println("✅ Registered in the platform registry")
	} else {
		fmt.Println("✅ Already registered in the platform registry")
	}
	return true
}

// environmentDatabase names the per-environment database instance; prod
// keeps the bare instance name.
func environmentDatabase(base, env string) string {
	if base == "" {
		return ""
	}
	if env == "prod" {
		return base
	}
	return base + "-" + env
}

func projectType(pipeline []cicd.Service) string {
	hasBackend, hasFrontend := false, false
	for _, svc := range pipeline {
		switch svc.Type {
		case "backend":
			hasBackend = true
		case "frontend":
			hasFrontend = true
		}
	}
	switch {
	case hasBackend && hasFrontend:
		return "fullstack"
	case hasFrontend:
		return "frontend"
	case hasBackend:
		return "backend"
	}
	return ""
}

// loadPlatformConfig fetches shared settings from the registry, falling
// back to environment-derived values so trigger creation can still try.
func loadPlatformConfig(ctx context.Context, reg *registry.Client, cfg *config.Config) *registry.PlatformConfig {
	platformCfg, err := reg.GetPlatformConfig(ctx)
	if err == nil {
		if cfg.Connection != "" {
			platformCfg.GitHubConnection = cfg.Connection
		}
		return platformCfg
	}
	fmt.Printf("⚠️  Could not load platform config from the registry: %v\n", err)
	fmt.Println("   Falling back to environment defaults.")
	return &registry.PlatformConfig{
		PlatformProject:        cfg.PlatformProject,
		GitHubConnection:       cfg.Connection,
		GitHubConnectionRegion: cfg.Region,
		RegistryLocation:       cfg.Region,
		RegistryRepo:           "services",
	}
}

func saveRecord(root string, record *state.Record) {
	store := state.NewStore(root)
	if err := store.Save(record); err != nil {
		fmt.Printf("⚠️  Could not save onboarding record: %v\n", err)
		return
	}
	fmt.Printf("💾 Onboarding record saved to %s\n", store.Path())
}

// discoverCommand scans a project and prints what it finds, nothing else.
func discoverCommand(c *cli.Context) error {
	ctx := c.Context
	cfg := config.Load()
	if region := c.String("region"); region != "" {
		cfg.Region = region
	}

	projectID := c.String("project")
	scanner := discovery.NewScanner(projectID, discovery.WithRegion(cfg.Region))
	if err := scanner.VerifyAccess(ctx); err != nil {
		return err
	}

	spin := models.NewLoader(os.Stdout, fmt.Sprintf("Scanning %s for manageable resources...", projectID))
	spin.Start()
	inv := scanner.DiscoverAll(ctx)
	spin.StopWithMessage(fmt.Sprintf("🔍 Scanned %s", projectID))
	terraform.DisplayInventory(inv)
	if inv.Total() > 0 {
		fmt.Printf("💡 Run 'terraseed import --project %s' to bring these under management.\n", projectID)
	}
	return nil
}

// initCommand scaffolds Terraform for a project that does not exist yet.
// Everything is create-mode; no discovery, no cloud calls.
func initCommand(c *cli.Context) error {
	cfg := config.Load()
	if region := c.String("region"); region != "" {
		cfg.Region = region
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := c.String("client")
	name := c.String("name")
	ws := terraform.NewWorkspace(client, name, c.String("project"), cfg.Region)

	selection := &models.ResourceSelection{}
	for _, spec := range c.StringSlice("service") {
		svcName, svcType, err := parseServiceFlag(spec)
		if err != nil {
			return err
		}
		if err := selection.Add(models.ResourceDescriptor{
			Kind:       models.KindComputeService,
			Name:       svcName,
			Region:     cfg.Region,
			Mode:       models.ModeCreate,
			Attributes: map[string]string{"type": svcType},
		}); err != nil {
			return err
		}
	}
	if c.Bool("database") {
		if err := selection.Add(models.ResourceDescriptor{
			Kind:   models.KindManagedDatastore,
			Name:   ws.ProjectSlug() + "-db",
			Region: cfg.Region,
			Mode:   models.ModeCreate,
		}); err != nil {
			return err
		}
	}

	root := c.String("dir")
	tfDir := filepath.Join(root, "terraform")
	existing, err := terraform.LoadArtifactSet(tfDir)
	if err != nil {
		return err
	}
	composed, err := terraform.NewComposer(ws).Compose(selection, existing)
	if err != nil {
		return err
	}
	written, err := terraform.WriteArtifactSet(tfDir, composed)
	if err != nil {
		return err
	}
	terraform.DisplayComposeResult(tfDir, written)

	fmt.Printf("\n🏗️  Create the GCP project before applying:\n")
	if err := cfg.ValidateForProjectCreation(); err == nil {
		fmt.Printf("   gcloud projects create %s --folder=%s\n", ws.ProjectID, cfg.FolderID)
		fmt.Printf("   gcloud billing projects link %s --billing-account=%s\n", ws.ProjectID, cfg.BillingAccount)
	} else {
		fmt.Printf("   gcloud projects create %s\n", ws.ProjectID)
		fmt.Println("   (set TERRASEED_FOLDER_ID and TERRASEED_BILLING_ACCOUNT for exact commands)")
	}
	fmt.Printf("   terraseed import --project %s --client %q --name %q\n\n", ws.ProjectID, client, name)

	terraform.DisplayNextSteps(tfDir)
	return nil
}

// parseServiceFlag splits a name:type service spec; type defaults to
// backend.
func parseServiceFlag(spec string) (name, serviceType string, err error) {
	name, serviceType, found := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("invalid --service %q; expected name:type", spec)
	}
	if !found || serviceType == "" {
		return name, "backend", nil
	}
	serviceType = strings.TrimSpace(serviceType)
	if serviceType != "backend" && serviceType != "frontend" {
		return "", "", fmt.Errorf("invalid service type %q for %s; use backend or frontend", serviceType, name)
	}
	return name, serviceType, nil
}

// addServicesCommand appends compute services to an already onboarded
// repository. Existing Terraform blocks are left byte for byte alone.
func addServicesCommand(c *cli.Context) error {
	root := c.String("dir")
	record, err := state.NewStore(root).Load()
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no onboarding record in %s; run 'terraseed import' first", root)
	}

	ws := terraform.NewWorkspace(record.Client, record.Project, record.GCPProjectID, record.Region)

	selection := &models.ResourceSelection{}
	for _, spec := range c.StringSlice("service") {
		svcName, svcType, err := parseServiceFlag(spec)
		if err != nil {
			return err
		}
		if err := selection.Add(models.ResourceDescriptor{
			Kind:       models.KindComputeService,
			Name:       svcName,
			Region:     record.Region,
			Mode:       models.ModeCreate,
			Attributes: map[string]string{"type": svcType},
		}); err != nil {
			return err
		}
	}

	tfDir := filepath.Join(root, "terraform")
	existing, err := terraform.LoadArtifactSet(tfDir)
	if err != nil {
		return err
	}
	composed, err := terraform.NewComposer(ws).Compose(selection, existing)
	if err != nil {
		return err
	}
	written, err := terraform.WriteArtifactSet(tfDir, composed)
	if err != nil {
		return err
	}
	terraform.DisplayComposeResult(tfDir, written)
	fmt.Println("💡 Re-run 'terraseed import' to refresh build configs and triggers for the new services.")

	terraform.DisplayNextSteps(tfDir)
	return nil
}

// statusCommand prints the onboarding record of the repository.
func statusCommand(c *cli.Context) error {
	root := c.String("dir")
	store := state.NewStore(root)
	record, err := store.Load()
	if err != nil {
		return err
	}
	if record == nil {
		fmt.Println("❌ No onboarding record found in this repository.")
		fmt.Println("💡 Run 'terraseed import' to onboard it.")
		return nil
	}

	fmt.Printf("\n🛰️  Onboarding status: %s/%s\n", record.Client, record.Project)
	fmt.Println(strings.Repeat("━", 60))
	fmt.Printf("GCP project:     %s\n", record.GCPProjectID)
	fmt.Printf("Region:          %s\n", record.Region)
	fmt.Printf("State bucket:    %s\n", record.StateBucket)
	fmt.Printf("Deploy identity: %s\n", record.DeployIdentity)
	if record.Registered {
		fmt.Println("Registry:        ✅ registered")
	} else {
		fmt.Println("Registry:        ⚠️ not registered")
	}
	fmt.Printf("Updated:         %s\n", record.UpdatedAt.Local().Format("2006-01-02 15:04:05 MST"))

	if record.Bootstrap != nil {
		if record.Bootstrap.Ready() {
			fmt.Println("Bootstrap:       ✅ complete")
		} else {
			fmt.Printf("Bootstrap:       ⚠️ failed steps: %s\n", strings.Join(record.Bootstrap.FailedSteps(), ", "))
		}
	}
	if record.Triggers != nil {
		fmt.Printf("Triggers:        %d usable, %d failed\n", len(record.Triggers.Created), len(record.Triggers.Failed))
	}

	jsonBytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("\n🧾 Full record:")
	fmt.Println(string(jsonBytes))
	return nil
}

// showDetailedHelp displays comprehensive CLI help documentation
func showDetailedHelp(c *cli.Context) error {
	const (
		cyan   = "\033[36m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)
	v := c.App.Version
	if v == "" {
		v = "beta"
	}

	help := fmt.Sprintf(`
%sterraseed%s v%s — GCP project onboarding CLI

%sUSAGE%s
	terraseed [global flags] <command> [flags]
	Example: terraseed import --project acme-shop-prod --client "Acme"

%sCOMMANDS%s
	import        Discover, select, generate Terraform, bootstrap trust,
	              register and create build triggers (main command)
	discover      Read-only scan of a project
	init          Scaffold Terraform for a project that does not exist yet
	add-services  Append services to an onboarded repository
	status        Show the onboarding record of this repository
	help          Show this help

%sIMPORT FLAGS%s
	--project <id>     GCP project ID (skips selection)
	--client <name>    Client the project belongs to
	--name <name>      Project display name
	--region <region>  Deploy region
	--repo <url>       GitHub repository URL (skips git detection)
	--dir <path>       Repository root (default ".")
	--yes              Accept defaults, no prompts
	--diagnose         Log IAM impersonation diagnostics

%sENV VARS%s
	TERRASEED_PLATFORM_PROJECT   Shared platform project
	TERRASEED_REGION             Default deploy region
	TERRASEED_REGISTRY_URL       Platform registry endpoint
	TERRASEED_GITHUB_CONNECTION  Pin a Cloud Build GitHub connection
	TERRASEED_ORG_ID             Organization (project creation hints)
	TERRASEED_BILLING_ACCOUNT    Billing account (project creation hints)
	TERRASEED_FOLDER_ID          Folder (project creation hints)

%sWORKFLOW%s
	1. gcloud auth application-default login
	2. terraseed import (inside the project repository)
	3. Review terraform/ and cicd/, commit them
	4. terraform init && terraform plan && terraform apply
	5. Push to main — the staging trigger deploys automatically

%sQUICK EXAMPLES%s
	terraseed discover --project acme-shop-prod
	terraseed import --project acme-shop-prod --client "Acme" --yes
	terraseed init --client "Acme" --name "Blog" --service blog-api:backend --database
	terraseed add-services --service worker:backend
	terraseed status

Run 'terraseed <command> --help' for command-specific flags.
`,
		cyan, reset, v,
		yellow, reset,
		yellow, reset,
		yellow, reset,
		yellow, reset,
		yellow, reset,
		yellow, reset,
	)
	fmt.Print(help)
	return nil
}
