package workflows

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/envfile"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/vault"
)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	Dir string

	// Path is the file to read. It also selects the format when Format is
	// empty.
	Path string

	// Data, when non-nil, is parsed instead of reading Path.
	Data []byte

	// Format is "env", "json" or "yaml".
	Format string

	// Overwrite replaces keys that already exist.
	Overwrite bool

	DryRun bool
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	envfile.ImportStats
	Format   envfile.Format `json:"format"`
	DryRun   bool           `json:"dry_run"`
	Migrated bool           `json:"migrated"`
}

// Import reads key/value pairs from a file into the vault.
func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	format, err := resolveFileFormat(opts.Format, opts.Path)
	if err != nil {
		return nil, err
	}

	var pairs []envfile.Pair
	switch {
	case opts.Data != nil && format == envfile.FormatEnv:
		pairs, err = envfile.ParseEnv(bytes.NewReader(opts.Data))
	case opts.Data != nil:
		pairs, err = envfile.ParseStructured(opts.Data, format)
	case opts.Path == "":
		err = fmt.Errorf("%w: no input file given", kerrors.ErrValidation)
	default:
		pairs, err = envfile.ReadFile(opts.Path, format)
	}
	if err != nil {
		return nil, err
	}

	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Format: format, DryRun: opts.DryRun}
	migrated, err := p.mutateVault(func(v *vault.Vault) (bool, error) {
		stats, err := envfile.Import(pairs, v, opts.Overwrite, opts.DryRun)
		if err != nil {
			return false, err
		}
		result.ImportStats = stats
		changed := len(stats.Added)+len(stats.Overwritten) > 0
		return changed && !opts.DryRun, nil
	})
	if err != nil {
		return nil, err
	}
	result.Migrated = migrated

	if !opts.DryRun {
		entry := audit.NewEntry("import")
		entry.Path = opts.Path
		entry.Format = string(format)
		entry.Added = len(result.Added)
		entry.Overwritten = len(result.Overwritten)
		entry.Skipped = len(result.Skipped)
		entry.Migrated = migrated
		audit.Log(entry)
	}
	return result, nil
}

// ExportOptions configures the export workflow.
type ExportOptions struct {
	Dir    string
	Path   string
	Format string

	// Force replaces an existing file.
	Force bool

	DryRun bool
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	Path   string         `json:"path"`
	Format envfile.Format `json:"format"`
	Count  int            `json:"count"`
	DryRun bool           `json:"dry_run"`
}

// Export writes every secret in plaintext to a file with mode 0600.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: no output file given", kerrors.ErrValidation)
	}
	format, err := resolveFileFormat(opts.Format, opts.Path)
	if err != nil {
		return nil, err
	}

	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}
	v, err := p.loadVault()
	if err != nil {
		return nil, err
	}

	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	count, err := envfile.Export(v, path, format, opts.Force, opts.DryRun)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		entry := audit.NewEntry("export")
		entry.Path = path
		entry.Format = string(format)
		audit.Log(entry)
	}
	return &ExportResult{Path: path, Format: format, Count: count, DryRun: opts.DryRun}, nil
}

// RenderSecrets serializes the vault without touching the filesystem, for
// export to stdout.
func RenderSecrets(ctx context.Context, dir, format string) ([]byte, error) {
	f, err := resolveFileFormat(format, "")
	if err != nil {
		return nil, err
	}
	p, err := openProject(dir)
	if err != nil {
		return nil, err
	}
	v, err := p.loadVault()
	if err != nil {
		return nil, err
	}
	return envfile.Render(v, f)
}

func resolveFileFormat(format, path string) (envfile.Format, error) {
	if format != "" {
		f, err := envfile.ParseFormat(format)
		if err != nil {
			return "", err
		}
		return f, nil
	}
	if path == "" {
		return envfile.FormatEnv, nil
	}
	return envfile.FormatForPath(path), nil
}
