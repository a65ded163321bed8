package docs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// Document names a bundled PDF
type Document string

const (
	Introduction Document = "introduction"
	Details      Document = "details"
)

var files = map[Document]string{
	Introduction: "Introduction.pdf",
	Details:      "Details.pdf",
}

// Documents lists the known documents in display order
func Documents() []Document {
	return []Document{Introduction, Details}
}

// FileName returns the PDF file name for d
func (d Document) FileName() (string, error) {
	name, ok := files[d]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDocument, string(d))
	}
	return name, nil
}

var (
	ErrUnknownDocument = errors.New("unknown document")
	ErrDocumentMissing = errors.New("document file not found")
)

// Mode selects how documents are delivered
type Mode string

const (
	ModeLocalFile  Mode = "local-file"
	ModeRemoteLink Mode = "remote-link"
)

// Link is the resolved location of a document
type Link struct {
	Document Document `json:"document" yaml:"document"`
	Mode     Mode     `json:"mode" yaml:"mode"`
	FileName string   `json:"fileName" yaml:"fileName"`
	Location string   `json:"location" yaml:"location"` // absolute path or URL
	Launched bool     `json:"launched" yaml:"launched"`
}

// Opener resolves a document and, in local mode, may open it in a viewer
type Opener interface {
	Open(ctx context.Context, doc Document) (Link, error)
}

// Launcher hands a file to the platform viewer
type Launcher func(ctx context.Context, target string) error

// Config holds the document delivery settings
type Config struct {
	Mode    Mode
	Dir     string
	BaseURL string
	Launch  bool
}

// New returns the opener for cfg.Mode
func New(cfg Config) (Opener, error) {
	switch cfg.Mode {
	case ModeLocalFile, "":
		return NewLocalOpener(cfg.Dir, cfg.Launch), nil
	case ModeRemoteLink:
		return NewRemoteOpener(cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown docs mode: %s", cfg.Mode)
	}
}

// LocalOpener serves documents from a directory
type LocalOpener struct {
	dir      string
	launch   bool
	launcher Launcher
}

// NewLocalOpener resolves documents under dir
func NewLocalOpener(dir string, launch bool) *LocalOpener {
	if dir == "" {
		dir = "."
	}
	return &LocalOpener{
		dir:      dir,
		launch:   launch,
		launcher: SystemLauncher,
	}
}

// WithLauncher replaces the platform viewer
func (o *LocalOpener) WithLauncher(l Launcher) *LocalOpener {
	o.launcher = l
	return o
}

// Open checks the file exists and launches it when enabled
func (o *LocalOpener) Open(ctx context.Context, doc Document) (Link, error) {
	name, err := doc.FileName()
	if err != nil {
		return Link{}, err
	}

	location, err := filepath.Abs(filepath.Join(o.dir, name))
	if err != nil {
		return Link{}, fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	info, err := os.Stat(location)
	if err != nil || info.IsDir() {
		return Link{}, fmt.Errorf("%w: %s", ErrDocumentMissing, location)
	}

	link := Link{
		Document: doc,
		Mode:     ModeLocalFile,
		FileName: name,
		Location: location,
	}

	if o.launch && o.launcher != nil {
		if err := o.launcher(ctx, location); err != nil {
			return link, fmt.Errorf("could not open %s: %w", name, err)
		}
		link.Launched = true
		log.Debug().Str("document", string(doc)).Str("path", location).Msg("Document launched")
	}

	return link, nil
}

// RemoteOpener builds download links and never touches the filesystem
type RemoteOpener struct {
	base *url.URL
}

// NewRemoteOpener validates baseURL
func NewRemoteOpener(baseURL string) (*RemoteOpener, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote-link mode requires a base URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid docs base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("docs base URL must be absolute: %s", baseURL)
	}
	return &RemoteOpener{base: u}, nil
}

func (o *RemoteOpener) Open(_ context.Context, doc Document) (Link, error) {
	name, err := doc.FileName()
	if err != nil {
		return Link{}, err
	}

	u := *o.base
	u.Path = path.Join("/", strings.TrimSuffix(u.Path, "/"), name)

	return Link{
		Document: doc,
		Mode:     ModeRemoteLink,
		FileName: name,
		Location: u.String(),
	}, nil
}

// SystemLauncher opens target with the platform's default viewer
func SystemLauncher(ctx context.Context, target string) error {
	name, args := launchCommand(runtime.GOOS, target)
	return exec.CommandContext(ctx, name, args...).Run()
}

func launchCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}
