package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

// child command page
const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// page is the position of a command's page in the docs navigation
type page struct {
	title    string
	navOrder int
	parent   string
}

// map from the base Markdown file name to its page
var pages = map[string]page{
	"metabolishmm":           {"metabolishmm", 0, ""},
	"metabolishmm_phylogeny": {"phylogeny", 0, "metabolishmm"},
	"metabolishmm_matrix":    {"matrix", 1, "metabolishmm"},
	"metabolishmm_markers":   {"markers", 2, "metabolishmm"},
}

// docsCmd writes Markdown pages for every command
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown documentation for every command",
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		return makeDocs(dir)
	},
}

// makeDocs parses the commands and outputs Markdown documentation files
func makeDocs(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	RootCmd.DisableAutoGenTag = true
	return doc.GenMarkdownTreeCustom(RootCmd, dir, filePrepender, linkHandler)
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(filename string) string {
	p, ok := pages[pageName(filename)]
	if !ok {
		return ""
	}
	if p.parent == "" {
		return fmt.Sprintf(rootPage, p.title, p.navOrder)
	}
	return fmt.Sprintf(childPage, p.title, p.parent, p.navOrder)
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	if base := pageName(filename); base != "metabolishmm" {
		return base
	}
	return "/"
}

func pageName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, path.Ext(name))
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
