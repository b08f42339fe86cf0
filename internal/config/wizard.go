package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the answers given to the init wizard.
type WizardResult struct {
	Name     string
	Image    string
	KeyName  string
	Region   string
	Size     string
	Username string
	Mode     Mode
	Script   string
	Tags     string
}

// Regions offered by the wizard. Any DigitalOcean slug is accepted in the file.
var wizardRegions = []huh.Option[string]{
	huh.NewOption("Frankfurt (fra1)", "fra1"),
	huh.NewOption("Amsterdam (ams3)", "ams3"),
	huh.NewOption("London (lon1)", "lon1"),
	huh.NewOption("New York (nyc3)", "nyc3"),
	huh.NewOption("San Francisco (sfo3)", "sfo3"),
	huh.NewOption("Toronto (tor1)", "tor1"),
	huh.NewOption("Singapore (sgp1)", "sgp1"),
	huh.NewOption("Bangalore (blr1)", "blr1"),
	huh.NewOption("Sydney (syd1)", "syd1"),
}

var wizardImages = []huh.Option[string]{
	huh.NewOption("Ubuntu 24.04 LTS", "ubuntu-24-04-x64"),
	huh.NewOption("Ubuntu 22.04 LTS", "ubuntu-22-04-x64"),
	huh.NewOption("Debian 12", "debian-12-x64"),
}

var wizardSizes = []huh.Option[string]{
	huh.NewOption("c-2 - 2 dedicated vCPU, 4GB RAM", "c-2"),
	huh.NewOption("s-1vcpu-1gb - 1 shared vCPU, 1GB RAM", "s-1vcpu-1gb"),
	huh.NewOption("s-2vcpu-2gb - 2 shared vCPU, 2GB RAM", "s-2vcpu-2gb"),
	huh.NewOption("s-2vcpu-4gb - 2 shared vCPU, 4GB RAM", "s-2vcpu-4gb"),
}

// RunWizard asks for the droplet settings interactively.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Image:    "ubuntu-24-04-x64",
		KeyName:  "id_ed25519",
		Region:   DefaultRegion,
		Size:     DefaultSize,
		Username: DefaultUsername,
		Mode:     ModeCloudInit,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Droplet name").
				Placeholder("web-1").
				Value(&result.Name).
				Validate(validateDropletName),
			huh.NewSelect[string]().
				Title("Image").
				Options(wizardImages...).
				Value(&result.Image),
			huh.NewSelect[string]().
				Title("Size").
				Options(wizardSizes...).
				Value(&result.Size),
			huh.NewSelect[string]().
				Title("Region").
				Options(wizardRegions...).
				Value(&result.Region),
		).Title("Droplet"),

		huh.NewGroup(
			huh.NewInput().
				Title("SSH key name").
				Description("File name in ~/.ssh; the .pub file is registered with DigitalOcean").
				Value(&result.KeyName).
				Validate(validateKeyName),
			huh.NewInput().
				Title("Admin user").
				Value(&result.Username),
			huh.NewInput().
				Title("Extra tags (optional)").
				Description("Comma-separated").
				Value(&result.Tags),
		).Title("Access"),

		huh.NewGroup(
			huh.NewSelect[Mode]().
				Title("Configuration").
				Options(
					huh.NewOption("cloud-init at first boot", ModeCloudInit),
					huh.NewOption("run a local script over SSH", ModeBootstrap),
				).
				Value(&result.Mode),
		).Title("Setup"),

		huh.NewGroup(
			huh.NewInput().
				Title("Bootstrap script").
				Placeholder("./bootstrap.sh").
				Value(&result.Script).
				Validate(requireNonEmpty("bootstrap script")),
		).WithHideFunc(func() bool { return result.Mode != ModeBootstrap }),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}
	return result, nil
}

// ToConfig converts the wizard answers to a defaulted Config.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Name:     strings.TrimSpace(r.Name),
		Image:    r.Image,
		KeyName:  strings.TrimSpace(r.KeyName),
		Region:   r.Region,
		Size:     r.Size,
		Username: strings.TrimSpace(r.Username),
		Mode:     r.Mode,
		Tags:     splitTags(r.Tags),
	}
	if r.Mode == ModeBootstrap {
		cfg.Bootstrap.Script = strings.TrimSpace(r.Script)
	}
	cfg.ApplyDefaults()
	return cfg
}

func splitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func validateDropletName(s string) error {
	if s == "" {
		return fmt.Errorf("droplet name is required")
	}
	if !dropletNameRegex.MatchString(s) {
		return fmt.Errorf("only letters, digits, dots and hyphens are allowed")
	}
	return nil
}

func validateKeyName(s string) error {
	if s == "" {
		return fmt.Errorf("key name is required")
	}
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("give the file name only, not a path")
	}
	return nil
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
