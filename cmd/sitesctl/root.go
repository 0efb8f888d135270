package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kongondo/SitesManager-sub001/internal/config"
	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/host/sqlstore"
	"github.com/kongondo/SitesManager-sub001/internal/i18n"
	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/lock"
	"github.com/kongondo/SitesManager-sub001/internal/logging"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	hostroot "github.com/kongondo/SitesManager-sub001/internal/root"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

var (
	getwd       = os.Getwd
	openStore   = sqlstore.Open
	newRunID    = uuid.NewString
	lockTimeout = lock.DefaultTimeout
)

// globalOptions holds the persistent root flags.
type globalOptions struct {
	root     string
	config   string
	lang     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", "", messages.RootFlagRoot)
	flags.StringVar(&opts.config, "config", "", messages.RootFlagConfig)
	flags.StringVar(&opts.lang, "lang", "", messages.RootFlagLang)
	flags.StringVar(&opts.logLevel, "log-level", "", messages.RootFlagLogLevel)

	cmd.AddCommand(
		newHostCmd(opts),
		newInstallCmd(opts),
		newCleanupCmd(opts),
		newDoctorCmd(opts),
		newVariantsCmd(),
	)
	return cmd
}

// resolveRoot returns the absolute host root from --root, or the host root
// found above the working directory.
func (o *globalOptions) resolveRoot() (string, error) {
	root := strings.TrimSpace(o.root)
	if root == "" {
		cwd, err := getwd()
		if err != nil {
			return "", err
		}
		found, err := hostroot.Resolve(cwd)
		if err != nil {
			return "", err
		}
		root = found
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigResolveRootFmt, root, err)
	}
	return abs, nil
}

// hostEnv is the resolved state shared by commands that open the host store.
type hostEnv struct {
	root      string
	cfg       *config.Config
	logger    *log.Logger
	localizer *i18n.Localizer
	store     *sqlstore.Store
}

// open loads config, applies flag overrides and opens the host store.
func (o *globalOptions) open(cmd *cobra.Command) (*hostEnv, error) {
	root, err := o.resolveRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root, o.config)
	if err != nil {
		return nil, err
	}
	if o.lang != "" {
		cfg.UI.Language = o.lang
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(messages.ConfigFlagsSource); err != nil {
		return nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.DatabasePath(root)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cmd.Context(), dbPath)
	if err != nil {
		return nil, err
	}
	localizer := i18n.New(cfg.UI.Language)
	logger.Debug("host store opened", "root", root, "database", dbPath, "language", localizer.Language())
	return &hostEnv{
		root:      root,
		cfg:       cfg,
		logger:    logger,
		localizer: localizer,
		store:     store,
	}, nil
}

func (e *hostEnv) Close() error {
	return e.store.Close()
}

func (e *hostEnv) repos() host.Repositories {
	return e.store.Repositories()
}

// withLock serializes mutating runs against the same host root.
func (e *hostEnv) withLock(fn func() error) error {
	return lock.WithFileLock(lock.Path(e.root), lockTimeout, fn)
}

func (e *hostEnv) installOptions(session host.Session, runID string, warn io.Writer) install.Options {
	return install.Options{
		Root:       e.root,
		Repos:      e.repos(),
		Session:    session,
		System:     install.RealSystem{},
		Logger:     e.logger,
		WarnWriter: warn,
		Localizer:  e.localizer,
		AdminTheme: e.cfg.Host.AdminTheme,
		LandingURL: e.cfg.Host.LandingURL,
		RunID:      runID,
	}
}

// variantArgs requires a single registered variant argument.
func variantArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf(messages.CommandRequiresArgFmt, cmd.Name(), strings.Join(variant.Keys(), ", "))
	}
	_, err := variant.Lookup(args[0])
	return err
}

// closeEnv closes env and reports the close error unless the run already failed.
func closeEnv(env *hostEnv, err *error) {
	if cerr := env.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
