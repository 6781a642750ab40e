// Package prompts holds the interactive questions of the onboarding flow.
// Every prompt has a non-interactive bypass in the CLI, so these functions
// are only reached when the operator runs without --yes.
package prompts

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/terraseed/terraseed/internal/cicd"
	"github.com/terraseed/terraseed/internal/discovery"
	"github.com/terraseed/terraseed/internal/models"
)

// SelectProject asks the operator to pick one of the accessible GCP
// projects. The preferred ID, when present in the list, becomes the
// default choice.
func SelectProject(projects []discovery.Project, preferred string) (string, error) {
	if len(projects) == 0 {
		return "", fmt.Errorf("no accessible GCP projects to choose from")
	}

	options := make([]string, 0, len(projects))
	byLabel := make(map[string]string, len(projects))
	var defaultLabel string
	for _, p := range projects {
		label := p.ProjectID
		if p.Name != "" && p.Name != p.ProjectID {
			label = fmt.Sprintf("%s (%s)", p.ProjectID, p.Name)
		}
		options = append(options, label)
		byLabel[label] = p.ProjectID
		if p.ProjectID == preferred {
			defaultLabel = label
		}
	}

	prompt := &survey.Select{
		Message:  "GCP project to import:",
		Options:  options,
		PageSize: 12,
	}
	if defaultLabel != "" {
		prompt.Default = defaultLabel
	}

	var chosen string
	_ = survey.AskOne(prompt, &chosen)
	chosen = strings.TrimSpace(chosen)
	if chosen == "" {
		return "", fmt.Errorf("no project selected")
	}
	return byLabel[chosen], nil
}

// SelectResources asks, family by family, which discovered resources to
// bring under management. Everything starts checked; unchecking a resource
// leaves it untouched in the project.
func SelectResources(inv *discovery.Inventory) (*models.ResourceSelection, error) {
	type family struct {
		message     string
		descriptors []models.ResourceDescriptor
		labels      []string
	}

	var families []family
	add := func(message string, descriptors []models.ResourceDescriptor, labels []string) {
		if len(descriptors) > 0 {
			families = append(families, family{message: message, descriptors: descriptors, labels: labels})
		}
	}

	var svcDescs []models.ResourceDescriptor
	var svcLabels []string
	for _, svc := range inv.Services {
		svcDescs = append(svcDescs, svc.Descriptor())
		svcLabels = append(svcLabels, fmt.Sprintf("%s (%s)", svc.Name, svc.Image))
	}
	add("Cloud Run services to manage:", svcDescs, svcLabels)

	var dbDescs []models.ResourceDescriptor
	var dbLabels []string
	for _, db := range inv.Databases {
		dbDescs = append(dbDescs, db.Descriptor())
		dbLabels = append(dbLabels, fmt.Sprintf("%s (%s, %s)", db.Name, db.Version, db.Tier))
	}
	add("Cloud SQL instances to manage:", dbDescs, dbLabels)

	var bucketDescs []models.ResourceDescriptor
	var bucketLabels []string
	for _, b := range inv.Buckets {
		bucketDescs = append(bucketDescs, b.Descriptor())
		bucketLabels = append(bucketLabels, fmt.Sprintf("%s (%s)", b.Name, b.Location))
	}
	add("Storage buckets to manage:", bucketDescs, bucketLabels)

	var secretDescs []models.ResourceDescriptor
	var secretLabels []string
	for _, sec := range inv.Secrets {
		secretDescs = append(secretDescs, sec.Descriptor())
		secretLabels = append(secretLabels, sec.Name)
	}
	add("Secrets to manage:", secretDescs, secretLabels)

	var accountDescs []models.ResourceDescriptor
	var accountLabels []string
	for _, acc := range inv.Accounts {
		accountDescs = append(accountDescs, acc.Descriptor())
		accountLabels = append(accountLabels, acc.Email)
	}
	add("Service accounts to manage:", accountDescs, accountLabels)

	var connDescs []models.ResourceDescriptor
	var connLabels []string
	for _, conn := range inv.Connectors {
		connDescs = append(connDescs, conn.Descriptor())
		connLabels = append(connLabels, fmt.Sprintf("%s (%s)", conn.Name, conn.Network))
	}
	add("VPC connectors to manage:", connDescs, connLabels)

	selection := &models.ResourceSelection{}
	for _, fam := range families {
		var picked []string
		_ = survey.AskOne(&survey.MultiSelect{
			Message:  fam.message,
			Options:  fam.labels,
			Default:  fam.labels,
			PageSize: 12,
		}, &picked)

		chosen := map[string]bool{}
		for _, label := range picked {
			chosen[label] = true
		}
		for i, label := range fam.labels {
			if !chosen[label] {
				continue
			}
			if err := selection.Add(fam.descriptors[i]); err != nil {
				return nil, err
			}
		}
	}
	return selection, nil
}

// environmentChoice keeps the label and the trigger definition together.
var environmentChoices = []struct {
	label string
	env   models.TriggerEnvironment
}{
	{
		label: "staging (auto-deploy on push to main)",
		env:   models.TriggerEnvironment{Name: "staging", BranchPattern: "^main$"},
	},
	{
		label: "prod (tag-based, manual approval)",
		env:   models.TriggerEnvironment{Name: "prod", TagPattern: "^v.*$", RequireApproval: true},
	},
}

// SelectEnvironments asks which deploy environments to set triggers up
// for. Both environments start checked.
func SelectEnvironments() ([]models.TriggerEnvironment, error) {
	options := make([]string, len(environmentChoices))
	for i, c := range environmentChoices {
		options[i] = c.label
	}

	var picked []string
	_ = survey.AskOne(&survey.MultiSelect{
		Message: "Environments to deploy to:",
		Options: options,
		Default: options,
	}, &picked)

	chosen := map[string]bool{}
	for _, label := range picked {
		chosen[label] = true
	}
	var envs []models.TriggerEnvironment
	for _, c := range environmentChoices {
		if chosen[c.label] {
			envs = append(envs, c.env)
		}
	}
	if len(envs) == 0 {
		return nil, fmt.Errorf("at least one environment is required for CI/CD setup")
	}
	return envs, nil
}

// PromptServices collects the deployable services of the repository:
// application type first, then a Cloud Run name and Dockerfile path per
// service.
func PromptServices(slug string) ([]cicd.Service, error) {
	var appType string
	_ = survey.AskOne(&survey.Select{
		Message: "Application type:",
		Options: []string{"backend", "frontend", "fullstack"},
		Default: "backend",
	}, &appType)
	if appType == "" {
		appType = "backend"
	}

	var services []cicd.Service
	for _, serviceType := range []string{"backend", "frontend"} {
		if appType != serviceType && appType != "fullstack" {
			continue
		}
		name := TextInput(
			fmt.Sprintf("Cloud Run service name for the %s:", serviceType),
			fmt.Sprintf("%s-%s", slug, serviceType),
		)
		dockerfile := TextInput(
			fmt.Sprintf("Dockerfile path for the %s:", serviceType),
			serviceType+"/Dockerfile",
		)
		if name == "" || dockerfile == "" {
			return nil, fmt.Errorf("service name and Dockerfile path are required")
		}
		services = append(services, cicd.Service{Name: name, Type: serviceType, Dockerfile: dockerfile})
	}
	return services, nil
}

// PromptRepoURL asks for the GitHub repository URL, defaulted from git
// detection or the naming convention.
func PromptRepoURL(defaultURL string) string {
	return TextInput("GitHub repository URL:", defaultURL)
}

// ConfirmAction asks a yes/no question.
func ConfirmAction(message string, def bool) bool {
	answer := def
	_ = survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)
	return answer
}

// TextInput asks for one line of text.
func TextInput(message, def string) string {
	var answer string
	_ = survey.AskOne(&survey.Input{Message: message, Default: def}, &answer)
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def
	}
	return answer
}
