package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-community-service/pkg/docs"
)

type docsOptions struct {
	root *rootOptions

	mode     string
	dir      string
	baseURL  string
	noLaunch bool

	launcher docs.Launcher
}

func newDocsCmd(root *rootOptions) *cobra.Command {
	opts := &docsOptions{root: root, launcher: docs.SystemLauncher}

	names := make([]string, 0, 2)
	for _, d := range docs.Documents() {
		names = append(names, string(d))
	}

	cmd := &cobra.Command{
		Use:       "docs <" + strings.Join(names, "|") + ">",
		Short:     "Open the bundled documentation",
		Long:      "Opens a documentation PDF in the system viewer, or prints its download link in remote-link mode.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, docs.Document(args[0]))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.mode, "mode", "", "local-file or remote-link (default from config)")
	flags.StringVar(&opts.dir, "dir", "", "directory holding the PDFs in local-file mode")
	flags.StringVar(&opts.baseURL, "base-url", "", "base URL of the PDFs in remote-link mode")
	flags.BoolVar(&opts.noLaunch, "no-launch", false, "only print the file path, do not open a viewer")

	return cmd
}

func (o *docsOptions) run(cmd *cobra.Command, doc docs.Document) error {
	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}

	dc := cfg.DocsOpenerConfig()
	if o.mode != "" {
		dc.Mode = docs.Mode(o.mode)
	}
	if o.dir != "" {
		dc.Dir = o.dir
	}
	if o.baseURL != "" {
		dc.BaseURL = o.baseURL
	}
	if o.noLaunch {
		dc.Launch = false
	}

	opener, err := docs.New(dc)
	if err != nil {
		return err
	}
	if local, ok := opener.(*docs.LocalOpener); ok {
		local.WithLauncher(o.launcher)
	}

	link, err := opener.Open(cmd.Context(), doc)
	if err != nil {
		return err
	}

	s := newStyles(cmd.OutOrStdout())
	status := "resolved"
	switch {
	case link.Launched:
		status = "opened"
	case link.Mode == docs.ModeRemoteLink:
		status = "download"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", s.label.Render(link.FileName+" "+status+":"), link.Location)
	return nil
}
