package main

import (
	"log"

	"github.com/leapstack-labs/cardfile/internal/config"
	"github.com/leapstack-labs/cardfile/pkg/persist"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// configSchema mirrors internal/config/types.go Config.
func configSchema() []ConfigField {
	return []ConfigField{
		{Name: "package_paths", Type: "[]string", Default: ".", Description: "Directories searched for packages, in order"},
		{Name: "state_path", Type: "string", Default: config.DefaultStateFile, Description: "Package index database"},
		{Name: "version_key", Type: "string", Default: persist.DefaultVersionKey, Description: "Key holding the document format version"},
		{Name: "max_version", Type: "int", Default: "0", Description: "Newest format version accepted; 0 accepts up to the current version"},
		{Name: "strict", Type: "bool", Default: "false", Description: "Treat unknown keys and types as errors"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: text, json or yaml"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging to stderr"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "cardfile configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("cardfile is configured via " + InlineCode(config.ConfigFileName) +
		", found by searching upward from the working directory. Relative paths are resolved against the directory holding the file.")

	var rows [][]string
	for _, f := range configSchema() {
		rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(f.Default), f.Description})
	}
	w.Table([]string{"Field", "Type", "Default", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `package_paths:
  - data
  - ~/.local/share/cardfile
state_path: .cardfile/index.db
strict: true
output: json`)
	return writePage(outDir, "configuration.md", w)
}
