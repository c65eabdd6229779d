package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/internal/configloader"
	"github.com/yaklabco/docrender/internal/logging"
	"github.com/yaklabco/docrender/pkg/config"
	"github.com/yaklabco/docrender/pkg/highlight"
	"github.com/yaklabco/docrender/pkg/htmldoc"
	"github.com/yaklabco/docrender/pkg/markdown"
	"github.com/yaklabco/docrender/pkg/render"
)

// ErrConfig marks configuration failures so main can pick the exit code.
var ErrConfig = errors.New("configuration error")

// session is the resolved state shared by the commands of one invocation.
type session struct {
	ctx     context.Context
	workDir string
	config  *config.Config
}

// log returns the logger the session was resolved with.
func (s *session) log() *log.Logger {
	return logging.FromContext(s.ctx)
}

// loadSession resolves configuration for cmd. cliCfg carries the values set
// by flags and may be nil.
func loadSession(cmd *cobra.Command, globals *globalFlags, cliCfg *config.Config) (*session, error) {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadOpts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: globals.configPath,
		CLIConfig:    cliCfg,
	}
	if globals.noConfig {
		loadOpts.IgnoreSystemConfig = true
		loadOpts.IgnoreUserConfig = true
		loadOpts.IgnoreProjectConfig = true
		loadOpts.IgnoreEnv = true
	}

	result, err := configloader.Load(ctx, loadOpts)
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, result.LoadedFrom)
	}

	cfg := result.Config
	logger.Debug("configuration resolved",
		logging.FieldFlavor, cfg.Markdown.Flavor,
		logging.FieldTheme, cfg.Theme.Name,
		logging.FieldJobs, cfg.Jobs,
	)

	return &session{
		ctx:     logging.WithLogger(ctx, logger),
		workDir: workDir,
		config:  cfg,
	}, nil
}

// themes builds the theme registry: the built-in themes plus every theme
// file named in the configuration.
func (s *session) themes() (*highlight.Registry, error) {
	registry := highlight.NewRegistry()
	for _, file := range s.config.Theme.Files {
		themes, err := highlight.LoadThemeFile(s.resolve(file))
		if err != nil {
			return nil, errors.Join(ErrConfig, err)
		}
		registry.Add(themes...)
	}
	return registry, nil
}

// htmlPolicy loads the configured HTML allowlist; nil selects the default.
func (s *session) htmlPolicy() (*htmldoc.Policy, error) {
	if s.config.HTML.Policy == "" {
		return nil, nil //nolint:nilnil // Nil policy means the built-in default.
	}
	data, err := os.ReadFile(s.resolve(s.config.HTML.Policy))
	if err != nil {
		return nil, errors.Join(ErrConfig, fmt.Errorf("read html policy: %w", err))
	}
	policy, err := htmldoc.LoadPolicy(data)
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}
	return policy, nil
}

// assets builds the asset library rooted at assets.root.
func (s *session) assets() *render.AssetLibrary {
	root := s.workDir
	if s.config.Assets.Root != "" {
		root = s.resolve(s.config.Assets.Root)
	}
	return render.NewAssetLibrary(
		render.WithFS(os.DirFS(root)),
		render.WithDensity(s.config.Assets.Density),
		render.WithLimits(s.config.Assets.MaxImageSide, s.config.Assets.MaxBytes),
	)
}

// renderer assembles a Renderer from the resolved configuration.
func (s *session) renderer() (*render.Renderer, error) {
	registry, err := s.themes()
	if err != nil {
		return nil, err
	}
	policy, err := s.htmlPolicy()
	if err != nil {
		return nil, err
	}
	lists, err := markdown.ParseListPolicy(s.config.Markdown.Lists)
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	return render.New(
		render.WithLogger(s.log()),
		render.WithThemes(registry),
		render.WithTheme(s.config.Theme.Name),
		render.WithAssets(s.assets()),
		render.WithBaseSize(s.config.Layout.BaseSize),
		render.WithLanguageDetection(s.config.DetectLanguage()),
		render.WithMarkdown(markdown.Options{
			Flavor: string(s.config.Markdown.Flavor),
			Lists:  lists,
		}),
		render.WithHTMLPolicy(policy),
	), nil
}

// resolve makes path absolute against the working directory.
func (s *session) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.workDir, path)
}

// readInput reads the named file, or stdin for "-" or no name.
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, args[0], nil
}
