package config

import "slices"

// Config describes the single droplet a run provisions.
type Config struct {
	// Name is the droplet name and the name given to a newly registered key.
	Name string `yaml:"name"`

	// Image is a DigitalOcean image slug (e.g. ubuntu-24-04-x64).
	Image string `yaml:"image"`

	// KeyName selects ~/.ssh/<KeyName> and ~/.ssh/<KeyName>.pub.
	KeyName string `yaml:"keyName"`

	Region   string   `yaml:"region,omitempty"`
	Size     string   `yaml:"size,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
	Username string   `yaml:"username,omitempty"`

	// Mode picks how the droplet is configured after creation.
	Mode Mode `yaml:"mode,omitempty"`

	// KeyMatch picks how local and account keys are compared.
	KeyMatch KeyMatch `yaml:"keyMatch,omitempty"`

	Bootstrap BootstrapConfig `yaml:"bootstrap,omitempty"`
	Archive   ArchiveConfig   `yaml:"archive,omitempty"`
}

// BootstrapConfig configures the remote bootstrap variant.
type BootstrapConfig struct {
	// Script is the local path of the script copied to RemoteScriptPath.
	Script string `yaml:"script,omitempty"`
}

// ArchiveConfig configures the optional upload of run outputs to Spaces.
type ArchiveConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Region string `yaml:"region,omitempty"`
}

// Enabled reports whether outputs should be archived.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Endpoint returns the Spaces S3 endpoint for the archive region.
func (a ArchiveConfig) Endpoint() string {
	return "https://" + a.Region + ".digitaloceanspaces.com"
}

// Mode is the post-creation configuration variant.
type Mode string

const (
	// ModeCloudInit hands a rendered cloud-config to the droplet at first boot.
	ModeCloudInit Mode = "cloud-init"
	// ModeBootstrap copies a local script to the droplet over SSH and runs it.
	ModeBootstrap Mode = "bootstrap"
)

// ValidModes returns all valid modes.
func ValidModes() []Mode {
	return []Mode{ModeCloudInit, ModeBootstrap}
}

// IsValid returns true if the mode is known.
func (m Mode) IsValid() bool {
	return slices.Contains(ValidModes(), m)
}

// KeyMatch is the strategy used to pair the local key with an account key.
type KeyMatch string

const (
	// KeyMatchContains matches when the local key text contains the account
	// key material. Tolerates comments and trailing whitespace in key files.
	KeyMatchContains KeyMatch = "contains"
	// KeyMatchExact compares the decoded key bytes and ignores comments.
	KeyMatchExact KeyMatch = "exact"
)

// ValidKeyMatches returns all valid key match strategies.
func ValidKeyMatches() []KeyMatch {
	return []KeyMatch{KeyMatchContains, KeyMatchExact}
}

// IsValid returns true if the strategy is known.
func (k KeyMatch) IsValid() bool {
	return slices.Contains(ValidKeyMatches(), k)
}

// ApplyDefaults fills every optional field that was left empty.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Size == "" {
		c.Size = DefaultSize
	}
	if c.Username == "" {
		c.Username = DefaultUsername
	}
	if c.Mode == "" {
		c.Mode = ModeCloudInit
	}
	if c.KeyMatch == "" {
		c.KeyMatch = KeyMatchContains
	}
	if c.Archive.Enabled() && c.Archive.Region == "" {
		c.Archive.Region = DefaultArchiveRegion
	}
}

// DropletTags returns the fixed tags followed by the caller's tags, with
// duplicates removed and first-seen order kept.
func (c *Config) DropletTags() []string {
	tags := make([]string, 0, len(FixedTags)+len(c.Tags))
	seen := make(map[string]bool, cap(tags))
	for _, t := range slices.Concat(FixedTags, c.Tags) {
		if seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
