package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/liangyou/nodeswitch/internal/env"
	"github.com/liangyou/nodeswitch/internal/version"
	"github.com/liangyou/nodeswitch/pkg/models"
)

// SwitchService 描述版本切换能力。
type SwitchService interface {
	Auto(ctx context.Context, startDir string) (version.Outcome, error)
	Use(ctx context.Context, pin string) (version.Outcome, error)
}

// ResolveService 描述版本固定文本的解析能力。
type ResolveService interface {
	Resolve(ctx context.Context, pin string) (models.NodeVersion, error)
}

// ListService 描述本地版本查询能力。
type ListService interface {
	LocalVersions(ctx context.Context) ([]version.Entry, error)
	CurrentVersion() *models.Version
}

// SystemService 描述系统 node/npm 版本查询能力。
type SystemService interface {
	NodeVersion(ctx context.Context) *models.Version
	NPMVersion(managed *models.Version) (models.Version, error)
}

// ShellService 描述 shell 钩子能力。
type ShellService interface {
	DetectShell() (string, error)
	Hook(shellType string) (string, error)
	UpdateShellConfig(shellType string) (string, error)
}

// Services 聚合各命令依赖的服务。
type Services struct {
	Switcher SwitchService
	Resolver ResolveService
	Lister   ListService
	System   SystemService
	Shell    ShellService
}

// Settings 是全局参数解析后的结果。
type Settings struct {
	ConfigFile string
	EnvFile    string
	Logger     *slog.Logger
}

// Builder 根据全局参数构造服务，由 cmd/nodeswitch 注入。
type Builder func(Settings) (*Services, error)

// App 负责 CLI 命令解析与分发。
type App struct {
	out     io.Writer
	errOut  io.Writer
	version string
	build   Builder
	getwd   func() (string, error)

	verbose  bool
	settings Settings
	services *Services
}

// NewApp 创建 CLI 应用实例。out 只输出供 shell eval 的内容，提示信息写入 errOut。
func NewApp(out, errOut io.Writer, build Builder, version string) *App {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &App{
		out:     out,
		errOut:  errOut,
		version: version,
		build:   build,
		getwd:   os.Getwd,
	}
}

// Run 解析参数并执行命令。
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.Command()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Command 构建命令树。
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "nodeswitch",
		Short: "Switch Node.js versions from .nvmrc files",
		Long: `nodeswitch reads the nearest .nvmrc (or the nvm default alias), resolves it
against the versions installed by nvm and prints shell statements that switch
PATH, NVM_BIN and NVM_INC. Evaluate its output in your shell:

  eval "$(nodeswitch)"`,
		Version:           a.version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAuto(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "print debug diagnostics to stderr")
	flags.StringVar(&a.settings.ConfigFile, "config", "", "path to a nodeswitch YAML config file")
	flags.StringVar(&a.settings.EnvFile, "env-file", "", "dotenv file overriding HOME, NVM_DIR and PATH")

	root.AddCommand(
		a.useCommand(),
		a.resolveCommand(),
		a.currentCommand(),
		a.listCommand(),
		a.systemCommand(),
		a.initCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.settings.Logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	if a.build == nil {
		return errors.New("cli: services are unavailable")
	}
	services, err := a.build(a.settings)
	if err != nil {
		return err
	}
	a.services = services
	return nil
}

func (a *App) useCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use [pin]",
		Short: "Print the script switching to the pinned version",
		Long:  "Without arguments behaves like the root command. With an argument, resolves it as .nvmrc content.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.runAuto(cmd.Context())
			}
			if a.services.Switcher == nil {
				return errors.New("use command is unavailable")
			}
			outcome, err := a.services.Switcher.Use(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.emit(outcome)
			return nil
		},
	}
}

func (a *App) runAuto(ctx context.Context) error {
	if a.services.Switcher == nil {
		return errors.New("switch is unavailable")
	}
	cwd, err := a.getwd()
	if err != nil {
		return fmt.Errorf("couldn't get working directory: %w", err)
	}

	outcome, err := a.services.Switcher.Auto(ctx, cwd)
	if errors.Is(err, version.ErrNoPin) {
		a.settings.Logger.Debug("nothing to do", "reason", err)
		return nil
	}
	if err != nil {
		return err
	}
	a.emit(outcome)
	return nil
}

// emit 在 out 输出脚本，在 errOut 输出提示信息；无需切换时不输出任何内容。
func (a *App) emit(outcome version.Outcome) {
	if !outcome.Changed() {
		return
	}
	fmt.Fprintln(a.out, env.RenderScript(outcome.Changesets))

	switch {
	case outcome.PinPath != "":
		fmt.Fprintf(a.errOut, "Found '%s' with version <%s>\n", outcome.PinPath, outcome.Pin)
	case outcome.Pin == "default":
		fmt.Fprintln(a.errOut, "Reverting to nvm default version")
	}
	if outcome.Resolved != nil {
		fmt.Fprintf(a.errOut, "Now using %s %s\n", outcome.Resolved.RuntimeName(), outcome.Resolved)
		return
	}
	fmt.Fprintln(a.errOut, "Now using system version of node")
}

func (a *App) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <pin>",
		Short: "Resolve .nvmrc content without switching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Resolver == nil {
				return errors.New("resolve command is unavailable")
			}
			target, err := a.services.Resolver.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, target.String())
			return nil
		},
	}
}

func (a *App) currentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active nvm-managed version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Lister == nil {
				return errors.New("current version query is unavailable")
			}
			current := a.services.Lister.CurrentVersion()
			if current == nil {
				fmt.Fprintln(a.out, "system")
				return nil
			}
			fmt.Fprintln(a.out, current.String())
			return nil
		},
	}
}

func (a *App) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List installed versions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Lister == nil {
				return errors.New("local listing is unavailable")
			}
			entries, err := a.services.Lister.LocalVersions(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No versions installed.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(a.out, version.FormatLocalVersion(e))
			}
			return nil
		},
	}
}

func (a *App) systemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "system",
		Short: "Show the system node and npm versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.System == nil {
				return errors.New("system query is unavailable")
			}
			node := a.services.System.NodeVersion(cmd.Context())
			if node == nil {
				fmt.Fprintln(a.out, "node: not found")
			} else {
				fmt.Fprintf(a.out, "%s: %s\n", node.RuntimeName(), node)
			}
			npm, err := a.services.System.NPMVersion(nil)
			if err != nil {
				a.settings.Logger.Debug("system npm unavailable", "error", err)
				fmt.Fprintln(a.out, "npm: not found")
				return nil
			}
			fmt.Fprintf(a.out, "npm: %s\n", npm)
			return nil
		},
	}
}

func (a *App) initCommand() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:       "init [bash|zsh]",
		Short:     "Print (or install) the shell hook that switches on directory change",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"bash", "zsh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Shell == nil {
				return errors.New("init command is unavailable")
			}
			shell := ""
			if len(args) == 1 {
				shell = args[0]
			} else {
				detected, err := a.services.Shell.DetectShell()
				if err != nil {
					return err
				}
				shell = detected
			}

			if write {
				path, err := a.services.Shell.UpdateShellConfig(shell)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.errOut, "Updated %s, restart your shell to apply.\n", path)
				return nil
			}
			hook, err := a.services.Shell.Hook(shell)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, hook)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "append the hook to the shell config file")
	return cmd
}
