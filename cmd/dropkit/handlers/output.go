package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// OutputOptions select how a command result is printed.
type OutputOptions struct {
	Format string
	File   string
}

func (o OutputOptions) validate() error {
	switch o.Format {
	case "", FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (use text, json or yaml)", o.Format)
}

// writeResult renders v in the selected format to stdout and, if set, to the
// output file. text renders the human-readable form.
func writeResult(opts OutputOptions, v any, text func(w io.Writer)) error {
	var buf bytes.Buffer
	switch opts.Format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		buf.Write(data)
	default:
		text(&buf)
	}

	if _, err := stdout.Write(buf.Bytes()); err != nil {
		return err
	}
	if opts.File != "" {
		if err := os.WriteFile(opts.File, buf.Bytes(), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	return nil
}
