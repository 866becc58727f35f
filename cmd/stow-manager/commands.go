package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RomanAverin/dotfiles/pkg/engine"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

func packageArgs(all *bool) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if !*all && len(args) == 0 {
			return fmt.Errorf("requires package names or --all")
		}
		return nil
	}
}

func newInstallCmd(flags *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "install [packages...]",
		Short: "Link packages into their target directories",
		Long: `Install links every file of the named packages into the target root
with GNU Stow. Existing files in the way are backed up to the
repository's .backups directory before they are replaced by links.
Sudo packages are installed by privileged copy instead.

A package name may carry a file selector (package:file) to install a
single special file of a sudo package.`,
		Args: packageArgs(&all),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePackageNames(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, false, nil)
			if err != nil {
				return err
			}
			result, err := eng.Install(args, all)
			if err != nil {
				return err
			}
			reportDone(result, flags)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "install every configured package")
	return cmd
}

func newUninstallCmd(flags *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "uninstall [packages...]",
		Short: "Remove packages' links from their target directories",
		Long: `Uninstall removes the named packages' links. Destinations that are
not links into the package (edited files, foreign links) are left in
place and reported. Sudo package files are removed one by one, each
after its own confirmation.`,
		Args: packageArgs(&all),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePackageNames(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, false, nil)
			if err != nil {
				return err
			}
			result, err := eng.Uninstall(args, all)
			if err != nil {
				return err
			}
			reportDone(result, flags)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "uninstall every configured package")
	return cmd
}

func newRestowCmd(flags *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "restow [packages...]",
		Short: "Reinstall packages (remove and relink)",
		Long: `Restow removes and recreates a package's links, picking up files
that were added, renamed or removed inside the package since the last
install.`,
		Args: packageArgs(&all),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePackageNames(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, false, nil)
			if err != nil {
				return err
			}
			result, err := eng.Restow(args, all)
			if err != nil {
				return err
			}
			reportDone(result, flags)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "restow every configured package")
	return cmd
}

func newAdoptCmd(flags *rootFlags) *cobra.Command {
	var all, noGit bool
	cmd := &cobra.Command{
		Use:   "adopt [packages...]",
		Short: "Take existing files into the repository",
		Long: `Adopt moves files that already exist at a package's destinations
into the repository (replacing the package's copies) and links them
back. The displaced repository versions are snapshotted first, so
nothing is lost either way.

When the repository is a git work tree, the resulting diff is shown
and a commit is offered.`,
		Args: packageArgs(&all),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePackageNames(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, false, func(o *engine.Options) {
				o.NoGit = noGit
			})
			if err != nil {
				return err
			}
			result, err := eng.Adopt(args, all)
			if err != nil {
				return err
			}
			reportDone(result, flags)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "adopt for every configured package")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip the diff and commit offer")
	return cmd
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [packages...]",
		Short: "Show the link state of packages",
		Long: `Status classifies every managed file of the named packages (or all
of them) against its destination: absent, correctly linked, linked to
the wrong place, or occupied by something else. Status never changes
anything.`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePackageNames(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, false, nil)
			if err != nil {
				return err
			}
			_, err = eng.Status(args, false)
			return err
		},
	}
	return cmd
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [packages...]",
		Short: "Verify link integrity",
		Long: `Check runs the status classification and additionally verifies that
every link's target still exists, including links whose source file
was deleted from the repository. A non-zero exit reports problems, so
check is usable from scripts and health checks.`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completePackageNames(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, false, nil)
			if err != nil {
				return err
			}
			sr, err := eng.Check(args, false)
			if err != nil {
				return err
			}
			if !sr.Healthy() {
				return errors.New(errors.ErrConflict, "integrity problems found")
			}
			return nil
		},
	}
	return cmd
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured packages",
		Long: `List prints every package known to the configuration document. It
reads only the configuration, so it works even when package
directories are missing or the repository is otherwise broken.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Like new, list works before the configuration document
			// exists: a fresh repository simply has no packages yet.
			eng, err := buildEngine(flags, true, nil)
			if err != nil {
				return err
			}
			eng.List()
			return nil
		},
	}
}

func newNewCmd(flags *rootFlags) *cobra.Command {
	var opts engine.NewOptions
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create and register a new package",
		Long: `New scaffolds a package directory, registers it in the configuration
(after backing the document up) and, with --from, moves an existing
file or directory into the package and links it back. Paths outside
the home directory become sudo packages: the file is copied instead of
moved and recorded as a special file mapping.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(flags, true, nil)
			if err != nil {
				return err
			}
			result, err := eng.NewPackage(args[0], opts)
			if err != nil {
				return err
			}
			reportDone(result, flags)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "existing path to adopt into the new package")
	cmd.Flags().BoolVar(&opts.Sudo, "sudo", false, "create a sudo package (privileged copy instead of links)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "custom target root for this package")
	return cmd
}

func reportDone(result *types.OperationResult, flags *rootFlags) {
	if result.DryRun || result.State != types.StateDone {
		return
	}
	if result.BackupDir != "" {
		fmt.Printf("%s %s\n", style.MutedStyle.Render("Displaced files saved to"),
			style.PathStyle.Render(result.BackupDir))
	}
	if hint := printedResultHint(flags.dryRun); hint != "" {
		fmt.Println(style.MutedStyle.Render(hint))
	}
}
