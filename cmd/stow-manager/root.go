package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RomanAverin/dotfiles/pkg/config"
	"github.com/RomanAverin/dotfiles/pkg/engine"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/paths"
	"github.com/RomanAverin/dotfiles/pkg/style"
)

// Set by goreleaser at build time.
var version = "dev"

// Global flags shared by every command.
type rootFlags struct {
	verbosity int
	dryRun    bool
	force     bool
	dir       string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "stow-manager",
		Short: "Manage dotfiles packages with GNU Stow",
		Long: `stow-manager keeps a dotfiles repository of per-application packages
and links them into place with GNU Stow. Every change is previewed and
confirmed, displaced files are backed up, and each action is journaled.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			style.Init()
		},
	}

	pf := cmd.PersistentFlags()
	pf.CountVarP(&flags.verbosity, "verbose", "v",
		"increase verbosity (-v, -vv, -vvv)")
	pf.BoolVarP(&flags.dryRun, "dry-run", "n", false,
		"preview changes without applying them")
	pf.BoolVarP(&flags.force, "force", "f", false,
		"skip confirmation prompts")
	pf.StringVarP(&flags.dir, "dir", "d", "",
		"dotfiles repository root (default: $DOTFILES_DIR, the enclosing git repository, or ~/dotfiles)")

	cmd.AddCommand(
		newInstallCmd(flags),
		newUninstallCmd(flags),
		newRestowCmd(flags),
		newAdoptCmd(flags),
		newStatusCmd(flags),
		newCheckCmd(flags),
		newListCmd(flags),
		newNewCmd(flags),
		newGuideCmd(),
	)
	return cmd
}

// buildEngine resolves paths, loads the configuration and wires an
// engine with the production collaborators. Commands that must work
// before the configuration exists pass allowMissing.
func buildEngine(flags *rootFlags, allowMissing bool, mod func(*engine.Options)) (*engine.Engine, error) {
	p, err := paths.New(flags.dir)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if allowMissing {
		cfg, err = config.LoadOrDefault(p.ConfigFile())
	} else {
		cfg, err = config.Load(p.ConfigFile())
	}
	if err != nil {
		return nil, err
	}

	opts := engine.Options{
		Config: cfg,
		Paths:  p,
		DryRun: flags.dryRun,
		Force:  flags.force,
	}
	if mod != nil {
		mod(&opts)
	}

	logger := logging.GetLogger("cli")
	logger.Debug().
		Str("root", p.Root()).
		Bool("dry_run", flags.dryRun).
		Msg("Engine configured")

	return engine.New(opts)
}

func completePackageNames(flags *rootFlags) ([]string, cobra.ShellCompDirective) {
	p, err := paths.New(flags.dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := config.Load(p.ConfigFile())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return cfg.AllPackages, cobra.ShellCompDirectiveNoFileComp
}

func printedResultHint(dryRun bool) string {
	if dryRun {
		return ""
	}
	return fmt.Sprintf("Run %s to verify.", style.InfoStyle.Render("stow-manager status"))
}
