package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navtree/internal/config"
	"github.com/vango-dev/navtree/internal/errors"
)

const sampleManifest = `not_found {
  html = "404.html"
}

route "" {
  html = "index.html"
}

route "users" {
  html = "users.html"
  css  = "users.css"
  js   = "users"

  route ":id" {
    html = "user.html"
  }
}

route "files" {
  route "*path" {
    capture = remainder
    html    = "file.html"
  }
}
`

var sampleViews = map[string]string{
	"404.html":   "<h1>Not found</h1>\n",
	"index.html": "<h1>Home</h1>\n",
	"users.html": "<h1>Users</h1>\n",
	"users.css":  "h1 { font-weight: 600; }\n",
	"users.js":   "export default function init(el) {}\n",
	"user.html":  "<h1>User</h1>\n",
	"file.html":  "<pre>file</pre>\n",
}

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create navtree.json and a sample manifest",
		Long: `Create navtree.json, a sample routes.hcl and its views.

Existing files other than navtree.json are left untouched.

Examples:
  navtree init
  navtree init ./site --name=site`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (default: directory name)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string) error {
	if config.Exists(dir) {
		return errors.New("E602").
			WithDetail("navtree.json already exists in " + dir).
			WithSuggestion("Edit the existing navtree.json instead")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	cfg := config.New()
	cfg.Name = name
	if cfg.Name == "" {
		cfg.Name = filepath.Base(abs)
	}

	viewsDir := filepath.Join(dir, cfg.Assets.Dir)
	if err := os.MkdirAll(viewsDir, 0755); err != nil {
		return errors.New("E602").Wrap(err)
	}
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "Created %s", config.ConfigFileName)

	files := map[string]string{filepath.Join(dir, cfg.Manifest): sampleManifest}
	for name, content := range sampleViews {
		files[filepath.Join(viewsDir, name)] = content
	}
	for path, content := range files {
		created, err := writeIfMissing(path, content)
		if err != nil {
			return errors.New("E602").Wrap(err)
		}
		if created {
			info(out, "wrote %s", path)
		}
	}
	return nil
}

// writeIfMissing writes content to path unless the file already exists.
func writeIfMissing(path, content string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}
