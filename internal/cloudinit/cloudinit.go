// Package cloudinit builds the first-boot cloud-config document handed to a
// droplet as user data.
package cloudinit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imamik/dropkit/internal/config"
)

// Header must be the first line of any cloud-config user data.
const Header = "#cloud-config"

// ErrMissingHeader is returned by Parse for text without the Header line.
var ErrMissingHeader = errors.New("cloud-config must start with " + Header)

// Document is the subset of cloud-config dropkit produces.
type Document struct {
	PackageUpdate  bool     `yaml:"package_update"`
	PackageUpgrade bool     `yaml:"package_upgrade"`
	Timezone       string   `yaml:"timezone"`
	Users          []User   `yaml:"users"`
	RunCmd         []string `yaml:"runcmd"`
}

// User is a cloud-config user entry.
type User struct {
	Name              string   `yaml:"name"`
	Sudo              string   `yaml:"sudo"`
	Shell             string   `yaml:"shell"`
	LockPasswd        bool     `yaml:"lock_passwd"`
	Groups            []string `yaml:"groups"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys"`
}

// Build returns the document for one administrative user that logs in with
// publicKey only. An empty username selects config.DefaultUsername.
//
// Root login is disabled and the firewall only admits SSH.
func Build(username, publicKey string) *Document {
	if username == "" {
		username = config.DefaultUsername
	}
	return &Document{
		PackageUpdate:  true,
		PackageUpgrade: true,
		Timezone:       config.DefaultTimezone,
		Users: []User{{
			Name:              username,
			Sudo:              "ALL=(ALL) NOPASSWD:ALL",
			Shell:             "/bin/bash",
			LockPasswd:        true,
			Groups:            []string{"sudo"},
			SSHAuthorizedKeys: []string{strings.TrimSpace(publicKey)},
		}},
		RunCmd: []string{
			"sed -i '/PermitRootLogin/d' /etc/ssh/sshd_config",
			"echo PermitRootLogin no >> /etc/ssh/sshd_config",
			"systemctl restart sshd",
			fmt.Sprintf("ufw allow %d/tcp", config.SSHPort),
			"ufw enable",
		},
	}
}

// Render serializes the document with the Header line first.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(Header + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return "", fmt.Errorf("failed to encode cloud-config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode cloud-config: %w", err)
	}
	return buf.String(), nil
}

// Parse reads rendered cloud-config back into a Document. Unknown keys are
// rejected.
func Parse(text string) (*Document, error) {
	if !strings.HasPrefix(text, Header+"\n") {
		return nil, ErrMissingHeader
	}

	var d Document
	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse cloud-config: %w", err)
	}
	return &d, nil
}
