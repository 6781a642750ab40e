package main

import (
	"log"
	"os"

	"github.com/terraseed/terraseed/internal/observability"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "terraseed",
		Usage: "Onboard GCP projects onto the platform",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			observability.InitLogger("terraseed", c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import an existing GCP project (main command)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "project",
						Usage: "GCP project ID (bypasses interactive project selection)",
					},
					&cli.StringFlag{
						Name:  "client",
						Usage: "Client name the project belongs to",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Project display name (defaults from the project ID)",
					},
					&cli.StringFlag{
						Name:  "region",
						Usage: "Deploy region (overrides TERRASEED_REGION)",
					},
					&cli.StringFlag{
						Name:  "repo",
						Usage: "GitHub repository URL (bypasses git detection)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Value: ".",
						Usage: "Repository root to write terraform/ and cicd/ into",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Accept defaults and skip prompts (requires --project and --client)",
					},
					&cli.BoolFlag{
						Name:  "diagnose",
						Usage: "Run IAM impersonation diagnostics before trigger creation",
					},
				},
				Action: importCommand,
			},
			{
				Name:  "discover",
				Usage: "Scan a GCP project without changing anything",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Usage:    "GCP project ID to scan",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "region",
						Usage: "Region for regional probes (overrides TERRASEED_REGION)",
					},
				},
				Action: discoverCommand,
			},
			{
				Name:  "init",
				Usage: "Scaffold a brand-new project (no discovery)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client",
						Usage:    "Client name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Project display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "GCP project ID (defaults to <client>-<name>-prod)",
					},
					&cli.StringFlag{
						Name:  "region",
						Usage: "Deploy region (overrides TERRASEED_REGION)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Value: ".",
						Usage: "Repository root to write terraform/ into",
					},
					&cli.StringSliceFlag{
						Name:  "service",
						Usage: "Service to create as name:type (repeatable, e.g. shop-api:backend)",
					},
					&cli.BoolFlag{
						Name:  "database",
						Usage: "Include a managed PostgreSQL instance",
					},
				},
				Action: initCommand,
			},
			{
				Name:  "add-services",
				Usage: "Append services to an onboarded project",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Value: ".",
						Usage: "Repository root of the onboarded project",
					},
					&cli.StringSliceFlag{
						Name:     "service",
						Usage:    "Service to add as name:type (repeatable)",
						Required: true,
					},
				},
				Action: addServicesCommand,
			},
			{
				Name:  "status",
				Usage: "Show the onboarding record of this repository",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Value: ".",
						Usage: "Repository root of the onboarded project",
					},
				},
				Action: statusCommand,
			},
			{
				Name:   "help",
				Usage:  "Show detailed help and the onboarding workflow",
				Action: showDetailedHelp,
			},
		},
		// Default action when no command specified
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
