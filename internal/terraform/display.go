// internal/terraform/display.go
package terraform

import (
	"fmt"
	"strings"

	"github.com/terraseed/terraseed/internal/discovery"
	"github.com/terraseed/terraseed/internal/models"
)

// DisplayInventory shows what discovery found in the project.
func DisplayInventory(inv *discovery.Inventory) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("📊 DISCOVERED RESOURCES: %s\n", inv.Project)
	fmt.Println(strings.Repeat("=", 70))

	if inv.Total() == 0 {
		fmt.Println("No manageable resources found.")
		fmt.Println(strings.Repeat("=", 70) + "\n")
		return
	}

	if len(inv.Services) > 0 {
		fmt.Printf("\n🚀 Cloud Run services (%d):\n", len(inv.Services))
		for _, svc := range inv.Services {
			fmt.Printf("   %s  [%s]\n", svc.Name, svc.Image)
		}
	}
	if len(inv.Databases) > 0 {
		fmt.Printf("\n🗄️  Cloud SQL instances (%d):\n", len(inv.Databases))
		for _, db := range inv.Databases {
			fmt.Printf("   %s  [%s, %s]\n", db.Name, db.Version, db.Tier)
		}
	}
	if len(inv.Buckets) > 0 {
		fmt.Printf("\n🪣 Storage buckets (%d):\n", len(inv.Buckets))
		for _, b := range inv.Buckets {
			fmt.Printf("   %s  [%s]\n", b.Name, b.Location)
		}
	}
	if len(inv.Secrets) > 0 {
		fmt.Printf("\n🔒 Secrets (%d):\n", len(inv.Secrets))
		for _, sec := range inv.Secrets {
			fmt.Printf("   %s\n", sec.Name)
		}
	}
	if len(inv.Accounts) > 0 {
		fmt.Printf("\n👤 Service accounts (%d):\n", len(inv.Accounts))
		for _, acc := range inv.Accounts {
			fmt.Printf("   %s\n", acc.Email)
		}
	}
	if len(inv.Connectors) > 0 {
		fmt.Printf("\n🔌 VPC connectors (%d):\n", len(inv.Connectors))
		for _, conn := range inv.Connectors {
			fmt.Printf("   %s  [%s]\n", conn.Name, conn.Network)
		}
	}
	if len(inv.APIs) > 0 {
		fmt.Printf("\n🧩 Enabled APIs: %s\n", strings.Join(inv.APIs, ", "))
	}

	fmt.Println(strings.Repeat("=", 70) + "\n")
}

// DisplaySelection shows what the operator chose to bring under management.
func DisplaySelection(selection *models.ResourceSelection) {
	fmt.Printf("📋 Selected for management: %s\n", selection.Summary())
}

// DisplayComposeResult reports the generated Terraform files.
func DisplayComposeResult(dir string, written []string) {
	if len(written) == 0 {
		fmt.Printf("✅ Terraform configuration in %s/ already up to date\n", dir)
		return
	}
	fmt.Printf("✅ Terraform configuration written to %s/\n", dir)
	for _, name := range written {
		fmt.Printf("   %s\n", name)
	}
}

// DisplayBootstrap shows the outcome of the trust bootstrap, one line per
// step.
func DisplayBootstrap(state models.TrustState) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("🔑 PROJECT BOOTSTRAP: %s\n", state.ProjectID)
	fmt.Println(strings.Repeat("=", 70))

	displayStep("State bucket", state.StateStore.Bucket, state.StateStore.Result)
	displayStep("Deploy identity", state.DeployIdentity.Email, state.DeployIdentity.Result)
	displayStep("Network bridge", state.NetworkBridge.AgentEmail, state.NetworkBridge.Result)

	if !state.Ready() {
		fmt.Printf("\n⚠️  Incomplete bootstrap, failed steps: %s\n", strings.Join(state.FailedSteps(), ", "))
		fmt.Println("   Fix the failures above and re-run; completed steps are skipped.")
	}
	fmt.Println(strings.Repeat("=", 70) + "\n")
}

func displayStep(label, resource string, result models.EnsureResult) {
	switch result.Outcome {
	case models.OutcomeCreated:
		fmt.Printf("✅ %s: %s (created)\n", label, resource)
	case models.OutcomeAlreadyPresent:
		fmt.Printf("✅ %s: %s (already present)\n", label, resource)
	default:
		fmt.Printf("❌ %s: %s\n", label, resource)
	}
	if result.Detail != "" {
		fmt.Printf("   %s\n", result.Detail)
	}
}

// DisplayTriggers shows the outcome of trigger provisioning.
func DisplayTriggers(result *models.TriggerResult) {
	if result == nil {
		return
	}
	fmt.Println("\n" + strings.Repeat("-", 50))
	fmt.Println("⚡ BUILD TRIGGERS")
	fmt.Println(strings.Repeat("-", 50))

	for _, rec := range result.Created {
		switch rec.Status {
		case models.TriggerStatusCreated:
			fmt.Printf("✅ %s → %s (created)\n", rec.Environment, rec.TriggerName)
		case models.TriggerStatusExisting:
			fmt.Printf("✅ %s → %s (already exists)\n", rec.Environment, rec.TriggerName)
		default:
			fmt.Printf("⚠️  %s → %s (%s)\n", rec.Environment, rec.TriggerName, rec.Status)
		}
	}
	for _, rec := range result.Failed {
		fmt.Printf("❌ %s → %s\n", rec.Environment, rec.TriggerName)
		if rec.Detail != "" {
			fmt.Printf("   %s\n", rec.Detail)
		}
	}
	fmt.Println(strings.Repeat("-", 50) + "\n")
}

// DisplayNextSteps prints the Terraform commands the operator runs next.
// The CLI never runs them itself.
func DisplayNextSteps(terraformDir string) {
	fmt.Println("🔧 Next steps:")
	fmt.Printf("   cd %s\n", terraformDir)
	fmt.Println("   terraform init")
	fmt.Println("   terraform plan")
	fmt.Println("   terraform apply")
	fmt.Println()
	fmt.Println("Review the plan before applying; adopted resources should show")
	fmt.Println("imports, not replacements.")
}

// DisplayRunError shows a failed onboarding step with remediation hints.
func DisplayRunError(operation string, err error) {
	fmt.Println("\n" + strings.Repeat("❌", 20))
	fmt.Printf("%s FAILED\n", strings.ToUpper(operation))
	fmt.Println(strings.Repeat("❌", 20))

	fmt.Printf("Error: %v\n", err)

	fmt.Println("\n💡 Troubleshooting:")
	fmt.Println("1. Check your gcloud login: gcloud auth application-default login")
	fmt.Println("2. Verify you can access the project: gcloud projects describe <project>")
	fmt.Println("3. Ensure your account has the required IAM roles")
	fmt.Println("4. Re-run with --verbose for the full log")

	fmt.Println(strings.Repeat("=", 50) + "\n")
}
